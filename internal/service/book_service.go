package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"booktracker/internal/cache"
	dom "booktracker/internal/domain"
	"booktracker/internal/repo"
	"booktracker/internal/utils"

	"golang.org/x/sync/singleflight"
)

const maxTitleLen = 150

// BookService validates and stores books for their owners.
type BookService struct {
	repo  repo.BookRepo
	cache *cache.BookCache
	sf    singleflight.Group
}

// NewBookService creates a BookService. If c is nil, caching is disabled.
func NewBookService(r repo.BookRepo, c *cache.BookCache) *BookService {
	return &BookService{repo: r, cache: c}
}

// List returns the owner's books in insertion order.
func (s *BookService) List(ctx context.Context, ownerID int64) ([]dom.Book, error) {
	if s.cache != nil {
		key := "list:" + strconv.FormatInt(ownerID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, ownerID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.ListByOwner(ctx, ownerID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, ownerID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Book), nil
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one of the owner's books.
func (s *BookService) Get(ctx context.Context, ownerID, id int64) (dom.Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.Book{}, ErrNotFound
		}
		return dom.Book{}, err
	}
	if b.OwnerID != ownerID {
		return dom.Book{}, ErrForbidden
	}
	return b, nil
}

// Add puts a new book with no pages read on the owner's list.
func (s *BookService) Add(ctx context.Context, ownerID int64, title string, totalPages int) (dom.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Book{}, invalid("title", "Title is required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return dom.Book{}, invalid("title", "Title is too long.")
	}
	if totalPages <= 0 {
		return dom.Book{}, invalid("total_pages", "Total pages must be a positive number.")
	}
	b, err := s.repo.Create(ctx, dom.Book{OwnerID: ownerID, Title: title, TotalPages: totalPages})
	if err != nil {
		return dom.Book{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return b, nil
}

// UpdateProgress sets pages read on one of the owner's books. pagesRead must
// lie within [0, TotalPages].
func (s *BookService) UpdateProgress(ctx context.Context, ownerID, id int64, pagesRead int) (dom.Book, error) {
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return dom.Book{}, err
	}
	if pagesRead < 0 {
		return dom.Book{}, invalid("pages_read", "Pages read cannot be negative.")
	}
	if pagesRead > existing.TotalPages {
		return dom.Book{}, invalid("pages_read",
			"Pages read cannot exceed the book's "+strconv.Itoa(existing.TotalPages)+" pages.")
	}
	b, err := s.repo.UpdateProgress(ctx, ownerID, id, pagesRead)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.Book{}, ErrNotFound
		}
		return dom.Book{}, err
	}
	s.invalidateCache(ctx, ownerID)
	return b, nil
}

func (s *BookService) invalidateCache(ctx context.Context, ownerID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, ownerID)
	}
}
