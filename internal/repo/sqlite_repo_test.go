package repo_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"booktracker/internal/config"
	"booktracker/internal/db"
	dom "booktracker/internal/domain"
	"booktracker/internal/repo"
	"booktracker/internal/utils"
)

func tempSQLite(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.Up(sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return sqlDB
}

func TestSQLiteUserRepo(t *testing.T) {
	ctx := context.Background()
	users := repo.NewSQLiteUserRepo(tempSQLite(t))

	u, err := users.Create(ctx, "ann", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 || u.Username != "ann" || u.PasswordHash != "hash" || u.CreatedAt.IsZero() {
		t.Fatalf("unexpected user %+v", u)
	}

	got, err := users.GetByUsername(ctx, "ann")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id = %d, want %d", got.ID, u.ID)
	}

	if _, err := users.Create(ctx, "ann", "other"); !utils.IsUniqueViolation(err) {
		t.Fatalf("duplicate username: got %v, want unique violation", err)
	}
	if _, err := users.GetByUsername(ctx, "bob"); !utils.IsNoRows(err) {
		t.Fatalf("missing user: got %v, want no rows", err)
	}
	if _, err := users.GetByID(ctx, 999); !utils.IsNoRows(err) {
		t.Fatalf("missing id: got %v, want no rows", err)
	}
}

func TestSQLiteBookRepoOwnership(t *testing.T) {
	ctx := context.Background()
	sqlDB := tempSQLite(t)
	users := repo.NewSQLiteUserRepo(sqlDB)
	books := repo.NewSQLiteBookRepo(sqlDB)

	ann, _ := users.Create(ctx, "ann", "x")
	bob, _ := users.Create(ctx, "bob", "x")

	first, err := books.Create(ctx, dom.Book{OwnerID: ann.ID, Title: "Dune", TotalPages: 412})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.PagesRead != 0 || first.OwnerID != ann.ID || first.TotalPages != 412 {
		t.Fatalf("unexpected book %+v", first)
	}
	second, _ := books.Create(ctx, dom.Book{OwnerID: ann.ID, Title: "Emma", TotalPages: 300})
	if _, err := books.Create(ctx, dom.Book{OwnerID: bob.ID, Title: "Ulysses", TotalPages: 730}); err != nil {
		t.Fatalf("create bob's: %v", err)
	}

	list, err := books.ListByOwner(ctx, ann.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("list not in insertion order or leaks other owners: %+v", list)
	}

	empty, err := books.ListByOwner(ctx, 999)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty list = %#v, %v", empty, err)
	}

	updated, err := books.UpdateProgress(ctx, ann.ID, first.ID, 120)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PagesRead != 120 {
		t.Fatalf("pages read = %d", updated.PagesRead)
	}

	_, err = books.UpdateProgress(ctx, bob.ID, first.ID, 5)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("foreign update: got %v, want sql.ErrNoRows", err)
	}
	again, _ := books.GetByID(ctx, first.ID)
	if again.PagesRead != 120 {
		t.Fatalf("foreign update changed the row: %+v", again)
	}
}
