package repo

import (
	"context"

	dom "booktracker/internal/domain"
)

// BookRepo persists books. Reads by id are not owner-scoped so the caller
// can tell a missing book from someone else's; writes always are.
type BookRepo interface {
	Create(ctx context.Context, b dom.Book) (dom.Book, error)
	GetByID(ctx context.Context, id int64) (dom.Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]dom.Book, error)
	UpdateProgress(ctx context.Context, ownerID, id int64, pagesRead int) (dom.Book, error)
}

const bookColumns = `id, owner_id, title, total_pages, pages_read, created_at, updated_at`

// PGBookRepo implements BookRepo on PostgreSQL.
type PGBookRepo struct {
	db Querier
}

// NewPGBookRepo returns a PGBookRepo that runs queries on db.
func NewPGBookRepo(db Querier) *PGBookRepo {
	return &PGBookRepo{db: db}
}

// Create inserts b and returns it with its new id.
func (r *PGBookRepo) Create(ctx context.Context, b dom.Book) (dom.Book, error) {
	query := `
		INSERT INTO books (owner_id, title, total_pages)
		VALUES ($1, $2, $3)
		RETURNING ` + bookColumns
	var out dom.Book
	err := r.db.QueryRow(ctx, query, b.OwnerID, b.Title, b.TotalPages).Scan(
		&out.ID, &out.OwnerID, &out.Title, &out.TotalPages, &out.PagesRead,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

// GetByID returns pgx.ErrNoRows when the book does not exist.
func (r *PGBookRepo) GetByID(ctx context.Context, id int64) (dom.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	var b dom.Book
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.TotalPages, &b.PagesRead,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// ListByOwner returns the owner's books ordered by id.
func (r *PGBookRepo) ListByOwner(ctx context.Context, ownerID int64) ([]dom.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, ownerID)
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

// UpdateProgress returns pgx.ErrNoRows when no book with id belongs to ownerID.
func (r *PGBookRepo) UpdateProgress(ctx context.Context, ownerID, id int64, pagesRead int) (dom.Book, error) {
	query := `
		UPDATE books SET pages_read = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + bookColumns
	var b dom.Book
	err := r.db.QueryRow(ctx, query, id, ownerID, pagesRead).Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.TotalPages, &b.PagesRead,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}
