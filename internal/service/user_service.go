package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	dom "booktracker/internal/domain"
	"booktracker/internal/repo"
	"booktracker/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const maxUsernameLen = 150

// UserService handles user auth logic.
type UserService struct {
	repo repo.UserRepo
	cost int
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithCost(cost int) *UserService {
	s.cost = cost
	return s
}

// ValidateCredentials checks username and password; returns user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return dom.User{}, invalid("username", "Username is required.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return dom.User{}, invalid("username", "Username is too long.")
	}
	if password == "" {
		return dom.User{}, invalid("password", "Password is required.")
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, hash)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// HashPassword returns the bcrypt hash stored for password.
func (s *UserService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", invalid("password", "Password is too long.")
		}
		return "", err
	}
	return string(hash), nil
}

// GetByID returns the user or ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}
