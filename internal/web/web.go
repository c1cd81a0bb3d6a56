// Package web serves the HTML form pages. Every outcome is a redirect with a
// flash message except for rendered forms and unrecoverable errors.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"booktracker/internal/auth"
	dom "booktracker/internal/domain"
	"booktracker/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// Handler serves the HTML pages.
type Handler struct {
	users        *service.UserService
	books        *service.BookService
	uploads      *service.UploadService
	sessions     *auth.Manager
	secureCookie bool
	maxUpload    int64
	log          *slog.Logger
}

// Options tune cookie and upload behavior of a Handler.
type Options struct {
	SecureCookie   bool
	MaxUploadBytes int64
}

// NewHandler wires the page handlers to their services.
func NewHandler(users *service.UserService, books *service.BookService, uploads *service.UploadService,
	sessions *auth.Manager, opts Options, log *slog.Logger) *Handler {
	return &Handler{
		users:        users,
		books:        books,
		uploads:      uploads,
		sessions:     sessions,
		secureCookie: opts.SecureCookie,
		maxUpload:    opts.MaxUploadBytes,
		log:          log,
	}
}

type page struct {
	Title   string
	User    *dom.User
	Flashes []Flash
	Books   []dom.Book
	Uploads []dom.Upload
}

// Deny sends unauthenticated visitors to the login form.
func (h *Handler) Deny(c *gin.Context) {
	addFlash(c, categoryInfo, "Please log in to access this page.")
	c.Redirect(http.StatusFound, "/login")
}

// Index renders the current user's books and uploads.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.users.GetByID(ctx, auth.UserIDFromContext(c))
	if errors.Is(err, service.ErrNotFound) {
		// session outlived its user row
		auth.ClearSessionCookie(c, h.secureCookie)
		h.Deny(c)
		return
	}
	if err != nil {
		h.serverError(c, "load user", err)
		return
	}
	books, err := h.books.List(ctx, user.ID)
	if err != nil {
		h.serverError(c, "list books", err)
		return
	}
	uploads, err := h.uploads.List(ctx, user.ID)
	if err != nil {
		h.serverError(c, "list uploads", err)
		return
	}
	c.HTML(http.StatusOK, "index.html", page{
		Title:   "My books",
		User:    &user,
		Flashes: popFlashes(c),
		Books:   books,
		Uploads: uploads,
	})
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", page{Title: "Log in", Flashes: popFlashes(c)})
}

// Login checks credentials and starts a session.
func (h *Handler) Login(c *gin.Context) {
	user, err := h.users.ValidateCredentials(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.HTML(http.StatusOK, "login.html", page{
				Title:   "Log in",
				Flashes: []Flash{{Category: categoryDanger, Message: "Login Unsuccessful. Please check username and password."}},
			})
			return
		}
		h.serverError(c, "login", err)
		return
	}
	token, err := h.sessions.Start(c.Request.Context(), user.ID)
	if err != nil {
		h.serverError(c, "start session", err)
		return
	}
	auth.SetSessionCookie(c, token, int(h.sessions.TTL().Seconds()), h.secureCookie)
	c.Redirect(http.StatusFound, "/")
}

// RegisterForm renders the registration page.
func (h *Handler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", page{Title: "Register", Flashes: popFlashes(c)})
}

// Register creates an account and sends the user to log in.
func (h *Handler) Register(c *gin.Context) {
	user, err := h.users.Register(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	switch {
	case err == nil:
		h.log.Info("user registered", "user_id", user.ID)
		addFlash(c, categorySuccess, "Account created successfully!")
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, service.ErrValidation):
		addFlash(c, categoryDanger, err.Error())
		c.Redirect(http.StatusFound, "/register")
	case errors.Is(err, service.ErrUsernameTaken):
		addFlash(c, categoryDanger, "That username is already taken.")
		c.Redirect(http.StatusFound, "/register")
	default:
		h.serverError(c, "register", err)
	}
}

// Logout ends the current session.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), auth.SessionToken(c)); err != nil {
		h.log.Warn("end session", "error", err)
	}
	auth.ClearSessionCookie(c, h.secureCookie)
	c.Redirect(http.StatusFound, "/login")
}

// AddBook creates a book with no pages read.
func (h *Handler) AddBook(c *gin.Context) {
	totalPages, err := service.ParseCount("total_pages", c.PostForm("total_pages"), 1)
	if err == nil {
		_, err = h.books.Add(c.Request.Context(), auth.UserIDFromContext(c), c.PostForm("title"), totalPages)
	}
	if err != nil {
		h.redirectWithError(c, "add book", err)
		return
	}
	addFlash(c, categorySuccess, "Book added successfully!")
	c.Redirect(http.StatusFound, "/")
}

// UpdateProgress sets pages read on one of the user's books.
func (h *Handler) UpdateProgress(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil || bookID <= 0 {
		h.redirectWithError(c, "update progress", service.ErrNotFound)
		return
	}
	pagesRead, err := service.ParseCount("pages_read", c.PostForm("pages_read"), 0)
	if err == nil {
		_, err = h.books.UpdateProgress(c.Request.Context(), auth.UserIDFromContext(c), bookID, pagesRead)
	}
	if err != nil {
		h.redirectWithError(c, "update progress", err)
		return
	}
	addFlash(c, categorySuccess, "Progress updated successfully!")
	c.Redirect(http.StatusFound, "/")
}

// Upload stores a PDF from the "file" form part.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile) && emptyFilePart(c.Request):
			h.redirectWithError(c, "upload", service.ErrNoSelectedFile)
			return
		case errors.Is(err, http.ErrMissingFile):
			addFlash(c, categoryDanger, "No file part")
		default:
			addFlash(c, categoryDanger, "Upload failed. The file may be too large.")
		}
		c.Redirect(http.StatusFound, "/")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.serverError(c, "open upload", err)
		return
	}
	defer f.Close()

	if _, err := h.uploads.Upload(c.Request.Context(), auth.UserIDFromContext(c), fh.Filename, f); err != nil {
		h.redirectWithError(c, "upload", err)
		return
	}
	addFlash(c, categorySuccess, "File uploaded successfully")
	c.Redirect(http.StatusFound, "/")
}

// Download streams one of the current user's PDFs.
func (h *Handler) Download(c *gin.Context) {
	f, u, err := h.uploads.Open(c.Request.Context(), auth.UserIDFromContext(c), c.Param("filename"))
	if errors.Is(err, service.ErrNotFound) {
		c.String(http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		h.serverError(c, "open upload", err)
		return
	}
	defer f.Close()
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": u.Name}))
	http.ServeContent(c.Writer, c.Request, u.Name, u.ModTime, f)
}

// emptyFilePart reports whether the form carried a "file" part with no file
// chosen. Such parts are parsed as plain values, not files.
func emptyFilePart(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value["file"]
	return ok
}

func (h *Handler) redirectWithError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		addFlash(c, categoryDanger, err.Error())
	case errors.Is(err, service.ErrInvalidFileType):
		addFlash(c, categoryDanger, "Invalid file type. Please upload a PDF.")
	case errors.Is(err, service.ErrNotFound):
		addFlash(c, categoryDanger, "Book not found.")
	case errors.Is(err, service.ErrForbidden):
		addFlash(c, categoryDanger, "You can only change your own books.")
	default:
		h.serverError(c, op, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) serverError(c *gin.Context, op string, err error) {
	h.log.Error(op, "error", err, "path", c.Request.URL.Path)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
