package domain

import "time"

// Book is a title on a user's shelf together with reading progress.
// Never exposes storage or transport details.
type Book struct {
	ID         int64
	OwnerID    int64
	Title      string
	TotalPages int
	PagesRead  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Upload is a stored PDF belonging to one user.
type Upload struct {
	Name    string
	Size    int64
	ModTime time.Time
}
