package dto

import "time"

type CreateBookRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=150"`
	TotalPages int    `json:"total_pages" binding:"required,gt=0"`
}

// UpdateProgressRequest uses a pointer so that 0 is accepted but a missing
// field is not.
type UpdateProgressRequest struct {
	PagesRead *int `json:"pages_read" binding:"required,min=0"`
}

type BookResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	TotalPages int       `json:"total_pages"`
	PagesRead  int       `json:"pages_read"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ListBooksResponse struct {
	Items []BookResponse `json:"items"`
}

type UploadResponse struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	URL     string    `json:"url"`
}

type ListUploadsResponse struct {
	Items []UploadResponse `json:"items"`
}
