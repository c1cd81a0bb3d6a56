package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	dom "booktracker/internal/domain"
	"booktracker/internal/storage"
)

const pdfExt = ".pdf"

// FileStore keeps uploaded files per owner.
type FileStore interface {
	Save(ctx context.Context, ownerID int64, name string, r io.Reader) (dom.Upload, error)
	List(ctx context.Context, ownerID int64) ([]dom.Upload, error)
	Open(ctx context.Context, ownerID int64, name string) (*os.File, dom.Upload, error)
}

// UploadService accepts PDF uploads and serves them back to their owner.
type UploadService struct {
	files FileStore
}

// NewUploadService creates an UploadService backed by files.
func NewUploadService(files FileStore) *UploadService {
	return &UploadService{files: files}
}

// cleanName strips any directory the client sent along with the file name.
func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// Upload stores a PDF under its client file name. The extension check is
// case-sensitive: "report.PDF" is rejected.
func (s *UploadService) Upload(ctx context.Context, ownerID int64, filename string, r io.Reader) (dom.Upload, error) {
	if strings.TrimSpace(filename) == "" {
		return dom.Upload{}, ErrNoSelectedFile
	}
	name := cleanName(filename)
	if name == "" {
		return dom.Upload{}, invalid("file", "Invalid file name")
	}
	if !strings.HasSuffix(name, pdfExt) {
		return dom.Upload{}, ErrInvalidFileType
	}
	return s.files.Save(ctx, ownerID, name, r)
}

// List returns the owner's stored files.
func (s *UploadService) List(ctx context.Context, ownerID int64) ([]dom.Upload, error) {
	return s.files.List(ctx, ownerID)
}

// Open returns one of the owner's stored files or ErrNotFound.
func (s *UploadService) Open(ctx context.Context, ownerID int64, filename string) (*os.File, dom.Upload, error) {
	name := cleanName(filename)
	if name == "" || name != filename || !strings.HasSuffix(name, pdfExt) {
		return nil, dom.Upload{}, ErrNotFound
	}
	f, u, err := s.files.Open(ctx, ownerID, name)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, dom.Upload{}, ErrNotFound
	}
	return f, u, err
}
