package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"booktracker/internal/app"
	"booktracker/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd(), newUserHashCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account; the password is read from the terminal or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			password, err := readNewPassword(cmd)
			if err != nil {
				return err
			}
			database, err := app.OpenDatabase(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()

			user, err := service.NewUserService(database.Users).Register(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			log.Info("user created", "user_id", user.ID, "username", user.Username)
			return nil
		},
	}
}

func newUserHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				p, err := readPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			h, err := service.NewUserService(nil).HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

// readNewPassword asks twice on a terminal; piped input is read once.
func readNewPassword(cmd *cobra.Command) (string, error) {
	password, err := readPassword(cmd, "Password: ")
	if err != nil {
		return "", err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return password, nil
	}
	again, err := readPassword(cmd, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if again != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
