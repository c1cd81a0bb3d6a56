package service_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"booktracker/internal/cache"
	"booktracker/internal/config"
	"booktracker/internal/db"
	"booktracker/internal/repo"
	"booktracker/internal/service"
	"booktracker/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users   *service.UserService
	books   *service.BookService
	uploads *service.UploadService
	mr      *miniredis.Miniredis
}

func newFixture(t *testing.T, withCache bool) fixture {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.Up(sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var bookCache *cache.BookCache
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		bookCache = cache.NewBookCache(rdb, time.Minute)
	}

	files, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return fixture{
		users:   service.NewUserService(repo.NewSQLiteUserRepo(sqlDB)).WithCost(bcrypt.MinCost),
		books:   service.NewBookService(repo.NewSQLiteBookRepo(sqlDB), bookCache),
		uploads: service.NewUploadService(files),
		mr:      mr,
	}
}

func TestRegisterAndValidateCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	u, err := f.users.Register(ctx, "  ann ", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "ann" || u.PasswordHash == "hunter2" {
		t.Fatalf("user = %+v", u)
	}

	got, err := f.users.ValidateCredentials(ctx, "ann", "hunter2")
	if err != nil || got.ID != u.ID {
		t.Fatalf("valid login: %+v, %v", got, err)
	}

	for _, tc := range []struct{ name, user, pass string }{
		{"wrong password", "ann", "hunter3"},
		{"unknown user", "bob", "hunter2"},
		{"empty password", "ann", ""},
		{"empty username", "", "hunter2"},
	} {
		if _, err := f.users.ValidateCredentials(ctx, tc.user, tc.pass); !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("%s: got %v, want ErrInvalidCredentials", tc.name, err)
		}
	}
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	if _, err := f.users.Register(ctx, "ann", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.users.Register(ctx, "ann", "pw2"); !errors.Is(err, service.ErrUsernameTaken) {
		t.Errorf("duplicate: got %v", err)
	}
	if _, err := f.users.Register(ctx, " ", "pw"); !errors.Is(err, service.ErrValidation) {
		t.Errorf("blank username: got %v", err)
	}
	if _, err := f.users.Register(ctx, strings.Repeat("a", 151), "pw"); !errors.Is(err, service.ErrValidation) {
		t.Errorf("long username: got %v", err)
	}
	if _, err := f.users.Register(ctx, "carl", ""); !errors.Is(err, service.ErrValidation) {
		t.Errorf("blank password: got %v", err)
	}
	if _, err := f.users.GetByID(ctx, 404); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestAddBookValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	ann, _ := f.users.Register(ctx, "ann", "pw")

	tests := []struct {
		name  string
		title string
		pages int
	}{
		{"empty title", "", 100},
		{"blank title", "   ", 100},
		{"zero pages", "T", 0},
		{"negative pages", "T", -5},
		{"long title", strings.Repeat("t", 151), 10},
	}
	for _, tt := range tests {
		_, err := f.books.Add(ctx, ann.ID, tt.title, tt.pages)
		var verr *service.ValidationError
		if !errors.As(err, &verr) || !errors.Is(err, service.ErrValidation) {
			t.Errorf("%s: got %v, want validation error", tt.name, err)
		}
	}
	list, _ := f.books.List(ctx, ann.ID)
	if len(list) != 0 {
		t.Fatalf("rejected books were stored: %+v", list)
	}
}

func TestAddThenListRoundTrip(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		ctx := context.Background()
		f := newFixture(t, withCache)
		ann, _ := f.users.Register(ctx, "ann", "pw")

		if list, err := f.books.List(ctx, ann.ID); err != nil || len(list) != 0 {
			t.Fatalf("cache=%v initial list = %+v, %v", withCache, list, err)
		}
		b, err := f.books.Add(ctx, ann.ID, "T", 100)
		if err != nil {
			t.Fatalf("cache=%v add: %v", withCache, err)
		}
		list, err := f.books.List(ctx, ann.ID)
		if err != nil {
			t.Fatalf("cache=%v list: %v", withCache, err)
		}
		if len(list) != 1 || list[0].ID != b.ID || list[0].Title != "T" || list[0].TotalPages != 100 || list[0].PagesRead != 0 {
			t.Fatalf("cache=%v list = %+v", withCache, list)
		}

		if _, err := f.books.UpdateProgress(ctx, ann.ID, b.ID, 40); err != nil {
			t.Fatalf("cache=%v update: %v", withCache, err)
		}
		list, _ = f.books.List(ctx, ann.ID)
		if list[0].PagesRead != 40 {
			t.Fatalf("cache=%v stale list after update: %+v", withCache, list)
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	ann, _ := f.users.Register(ctx, "ann", "pw")
	bob, _ := f.users.Register(ctx, "bob", "pw")

	annBook, _ := f.books.Add(ctx, ann.ID, "Dune", 412)
	bobBook, _ := f.books.Add(ctx, bob.ID, "Emma", 300)

	for _, pair := range []struct {
		owner, other int64
		otherBook    int64
	}{{ann.ID, bob.ID, bobBook.ID}, {bob.ID, ann.ID, annBook.ID}} {
		list, err := f.books.List(ctx, pair.owner)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, b := range list {
			if b.OwnerID != pair.owner {
				t.Fatalf("user %d sees book of user %d", pair.owner, b.OwnerID)
			}
		}
		if _, err := f.books.Get(ctx, pair.owner, pair.otherBook); !errors.Is(err, service.ErrForbidden) {
			t.Errorf("get foreign book: got %v", err)
		}
		if _, err := f.books.UpdateProgress(ctx, pair.owner, pair.otherBook, 1); !errors.Is(err, service.ErrForbidden) {
			t.Errorf("update foreign book: got %v", err)
		}
	}

	got, _ := f.books.Get(ctx, bob.ID, bobBook.ID)
	if got.PagesRead != 0 {
		t.Fatalf("foreign update leaked through: %+v", got)
	}
}

func TestUpdateProgressErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	ann, _ := f.users.Register(ctx, "ann", "pw")
	b, _ := f.books.Add(ctx, ann.ID, "Dune", 412)

	if _, err := f.books.UpdateProgress(ctx, ann.ID, 9999, 1); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
	if _, err := f.books.UpdateProgress(ctx, ann.ID, b.ID, -1); !errors.Is(err, service.ErrValidation) {
		t.Errorf("negative: got %v", err)
	}
	if _, err := f.books.UpdateProgress(ctx, ann.ID, b.ID, 413); !errors.Is(err, service.ErrValidation) {
		t.Errorf("past the end: got %v", err)
	}
	done, err := f.books.UpdateProgress(ctx, ann.ID, b.ID, 412)
	if err != nil || done.PagesRead != 412 {
		t.Errorf("finish: %+v, %v", done, err)
	}
}

func TestParseCount(t *testing.T) {
	if n, err := service.ParseCount("total_pages", " 12 ", 1); err != nil || n != 12 {
		t.Errorf("12: %d, %v", n, err)
	}
	for _, raw := range []string{"", "abc", "1.5", "0"} {
		if _, err := service.ParseCount("total_pages", raw, 1); !errors.Is(err, service.ErrValidation) {
			t.Errorf("%q: got %v", raw, err)
		}
	}
	if n, err := service.ParseCount("pages_read", "0", 0); err != nil || n != 0 {
		t.Errorf("0 with min 0: %d, %v", n, err)
	}
}

func TestUploads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	if _, err := f.uploads.Upload(ctx, 1, "notes.txt", strings.NewReader("x")); !errors.Is(err, service.ErrInvalidFileType) {
		t.Errorf("txt: got %v", err)
	}
	if _, err := f.uploads.Upload(ctx, 1, "report.PDF", strings.NewReader("x")); !errors.Is(err, service.ErrInvalidFileType) {
		t.Errorf("upper-case extension: got %v", err)
	}
	if _, err := f.uploads.Upload(ctx, 1, "", strings.NewReader("x")); !errors.Is(err, service.ErrValidation) {
		t.Errorf("empty name: got %v", err)
	}

	u, err := f.uploads.Upload(ctx, 1, `..\..\etc\report.pdf`, strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if u.Name != "report.pdf" {
		t.Fatalf("path components kept: %q", u.Name)
	}

	file, _, err := f.uploads.Open(ctx, 1, "report.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(file)
	file.Close()
	if string(body) != "%PDF" {
		t.Fatalf("body = %q", body)
	}

	if _, _, err := f.uploads.Open(ctx, 2, "report.pdf"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("other user's file: got %v", err)
	}
	if _, _, err := f.uploads.Open(ctx, 1, "../1/report.pdf"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("traversal: got %v", err)
	}

	list, err := f.uploads.List(ctx, 1)
	if err != nil || len(list) != 1 || list[0].Name != "report.pdf" {
		t.Fatalf("list = %+v, %v", list, err)
	}
}
