package repo

import (
	"context"
	"database/sql"
	"time"

	dom "booktracker/internal/domain"
)

// SQLiteUserRepo implements UserRepo on database/sql with the sqlite driver.
type SQLiteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo returns a SQLiteUserRepo over db.
func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

// GetByUsername returns sql.ErrNoRows when no user has that name.
func (r *SQLiteUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// GetByID returns sql.ErrNoRows when the user does not exist.
func (r *SQLiteUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Create inserts a user and returns it with its new id.
func (r *SQLiteUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		return dom.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dom.User{}, err
	}
	return r.GetByID(ctx, id)
}

// SQLiteBookRepo implements BookRepo on database/sql with the sqlite driver.
type SQLiteBookRepo struct {
	db *sql.DB
}

// NewSQLiteBookRepo returns a SQLiteBookRepo over db.
func NewSQLiteBookRepo(db *sql.DB) *SQLiteBookRepo {
	return &SQLiteBookRepo{db: db}
}

// Create inserts b and returns it with its new id.
func (r *SQLiteBookRepo) Create(ctx context.Context, b dom.Book) (dom.Book, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO books (owner_id, title, total_pages, pages_read, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		b.OwnerID, b.Title, b.TotalPages, now, now,
	)
	if err != nil {
		return dom.Book{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dom.Book{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns sql.ErrNoRows when the book does not exist.
func (r *SQLiteBookRepo) GetByID(ctx context.Context, id int64) (dom.Book, error) {
	var b dom.Book
	err := r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.OwnerID, &b.Title, &b.TotalPages, &b.PagesRead, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// ListByOwner returns the owner's books ordered by id.
func (r *SQLiteBookRepo) ListByOwner(ctx context.Context, ownerID int64) ([]dom.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE owner_id = ? ORDER BY id ASC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Book{}
	for rows.Next() {
		var b dom.Book
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Title, &b.TotalPages, &b.PagesRead,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpdateProgress returns sql.ErrNoRows when no book with id belongs to ownerID.
func (r *SQLiteBookRepo) UpdateProgress(ctx context.Context, ownerID, id int64, pagesRead int) (dom.Book, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET pages_read = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		pagesRead, time.Now().UTC(), id, ownerID,
	)
	if err != nil {
		return dom.Book{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dom.Book{}, err
	}
	if n == 0 {
		return dom.Book{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}
