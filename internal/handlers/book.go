package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"booktracker/internal/auth"
	dom "booktracker/internal/domain"
	"booktracker/internal/dto"
	"booktracker/internal/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	svc *service.BookService
	log *slog.Logger
}

func NewBookHandler(svc *service.BookService, log *slog.Logger) *BookHandler {
	return &BookHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List the current user's books
// @Tags         books
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListBooksResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /books [get]
func (h *BookHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "list books", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListBooksResponse{Items: booksToResponses(list)})
}

// Create godoc
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateBookRequest  true  "Book"
// @Success      201   {object}  dto.BookResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.svc.Add(c.Request.Context(), auth.UserIDFromContext(c), req.Title, req.TotalPages)
	if err != nil {
		writeError(c, h.log, "add book", err)
		return
	}
	c.JSON(http.StatusCreated, bookToResponse(b))
}

// GetByID godoc
// @Summary      Get one of the current user's books
// @Tags         books
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  dto.BookResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /books/{id} [get]
func (h *BookHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, h.log, "get book", err)
		return
	}
	c.JSON(http.StatusOK, bookToResponse(b))
}

// UpdateProgress godoc
// @Summary      Set pages read
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                        true  "Book ID"
// @Param        body  body      dto.UpdateProgressRequest  true  "Progress"
// @Success      200   {object}  dto.BookResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /books/{id}/progress [patch]
func (h *BookHandler) UpdateProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.svc.UpdateProgress(c.Request.Context(), auth.UserIDFromContext(c), id, *req.PagesRead)
	if err != nil {
		writeError(c, h.log, "update progress", err)
		return
	}
	c.JSON(http.StatusOK, bookToResponse(b))
}

// writeError maps service errors to status codes; anything unknown is a 500.
func writeError(c *gin.Context, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		log.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bookToResponse(b dom.Book) dto.BookResponse {
	return dto.BookResponse{
		ID:         b.ID,
		Title:      b.Title,
		TotalPages: b.TotalPages,
		PagesRead:  b.PagesRead,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func booksToResponses(list []dom.Book) []dto.BookResponse {
	out := make([]dto.BookResponse, len(list))
	for i := range list {
		out[i] = bookToResponse(list[i])
	}
	return out
}
