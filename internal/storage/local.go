package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	dom "booktracker/internal/domain"
)

const tempPrefix = ".upload-"

// ErrNotExist is returned when a stored file is missing.
var ErrNotExist = errors.New("file does not exist")

// Local keeps uploads on disk as <root>/<owner id>/<name>.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) ownerDir(ownerID int64) string {
	return filepath.Join(l.root, strconv.FormatInt(ownerID, 10))
}

// Save writes r to name, replacing any previous file. name must be a bare
// file name. The file appears atomically.
func (l *Local) Save(ctx context.Context, ownerID int64, name string, r io.Reader) (dom.Upload, error) {
	dir := l.ownerDir(ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dom.Upload{}, fmt.Errorf("create owner dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return dom.Upload{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return dom.Upload{}, fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return dom.Upload{}, fmt.Errorf("close upload: %w", err)
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return dom.Upload{}, fmt.Errorf("store upload: %w", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return dom.Upload{}, err
	}
	return dom.Upload{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns the owner's files sorted by name.
func (l *Local) List(ctx context.Context, ownerID int64) ([]dom.Upload, error) {
	entries, err := os.ReadDir(l.ownerDir(ownerID))
	if errors.Is(err, fs.ErrNotExist) {
		return []dom.Upload{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []dom.Upload{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, dom.Upload{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, ctx.Err()
}

// Open returns the owner's file for reading.
func (l *Local) Open(ctx context.Context, ownerID int64, name string) (*os.File, dom.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, dom.Upload{}, err
	}
	f, err := os.Open(filepath.Join(l.ownerDir(ownerID), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, dom.Upload{}, ErrNotExist
	}
	if err != nil {
		return nil, dom.Upload{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dom.Upload{}, err
	}
	if info.IsDir() {
		f.Close()
		return nil, dom.Upload{}, ErrNotExist
	}
	return f, dom.Upload{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
