package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"booktracker/internal/auth"
	dom "booktracker/internal/domain"
	"booktracker/internal/dto"
	"booktracker/internal/service"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	svc      *service.UploadService
	maxBytes int64
	log      *slog.Logger
}

func NewUploadHandler(svc *service.UploadService, maxBytes int64, log *slog.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, maxBytes: maxBytes, log: log}
}

// Create godoc
// @Summary      Upload a PDF
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        file  formData  file  true  "PDF file"
// @Success      201   {object}  dto.UploadResponse
// @Failure      400   {object}  map[string]string
// @Failure      413   {object}  map[string]string
// @Router       /uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		if errors.Is(err, http.ErrMissingFile) && emptyFilePart(c.Request) {
			writeError(c, h.log, "upload", service.ErrNoSelectedFile)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.log, "open upload", err)
		return
	}
	defer f.Close()

	u, err := h.svc.Upload(c.Request.Context(), auth.UserIDFromContext(c), fh.Filename, f)
	if err != nil {
		writeError(c, h.log, "store upload", err)
		return
	}
	c.JSON(http.StatusCreated, uploadToResponse(u))
}

// List godoc
// @Summary      List the current user's uploads
// @Tags         uploads
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListUploadsResponse
// @Router       /uploads [get]
func (h *UploadHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "list uploads", err)
		return
	}
	out := make([]dto.UploadResponse, len(list))
	for i := range list {
		out[i] = uploadToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListUploadsResponse{Items: out})
}

func uploadToResponse(u dom.Upload) dto.UploadResponse {
	return dto.UploadResponse{
		Name:    u.Name,
		Size:    u.Size,
		ModTime: u.ModTime,
		URL:     "/uploads/" + url.PathEscape(u.Name),
	}
}
