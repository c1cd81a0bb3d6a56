package app

import (
	"log/slog"
	"net/http"
	"time"

	_ "booktracker/docs"
	"booktracker/internal/auth"
	"booktracker/internal/cache"
	"booktracker/internal/config"
	"booktracker/internal/handlers"
	"booktracker/internal/repo"
	"booktracker/internal/service"
	"booktracker/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Upload parts beyond this size spill to temp files.
const defaultMultipartMemory = 8 << 20

// Deps are the backends the router's services are built on.
type Deps struct {
	Users repo.UserRepo
	Books repo.BookRepo
	Redis *redis.Client
	Files service.FileStore

	// BcryptCost overrides bcrypt.DefaultCost when non-zero.
	BcryptCost int
}

// NewRouter builds the engine with both the HTML and the JSON surface.
func NewRouter(cfg config.Config, deps Deps, log *slog.Logger) *gin.Engine {
	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(requestID(), requestLogger(log), gin.Recovery())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cookie"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.MaxMultipartMemory = min(cfg.Upload.MaxBytes, defaultMultipartMemory)
	r.SetHTMLTemplate(web.Templates())

	Setup(r, cfg, deps, log)
	return r
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, deps Deps, log *slog.Logger) {
	sessionStore := auth.NewStore(deps.Redis, cfg.Session.TTL.Duration())
	sessions := auth.NewManager(sessionStore, cfg.Session.SecretKey)

	userSvc := service.NewUserService(deps.Users)
	if deps.BcryptCost != 0 {
		userSvc.WithCost(deps.BcryptCost)
	}
	var bookCache *cache.BookCache
	if ttl := cfg.Cache.BookTTL.Duration(); ttl > 0 {
		bookCache = cache.NewBookCache(deps.Redis, ttl)
	}
	bookSvc := service.NewBookService(deps.Books, bookCache)
	uploadSvc := service.NewUploadService(deps.Files)

	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	pages := web.NewHandler(userSvc, bookSvc, uploadSvc, sessions, web.Options{
		SecureCookie:   cfg.Session.CookieSecure,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}, log)
	registerWebRoutes(r, pages, auth.RequireSession(sessions, log, pages.Deny))

	api := r.Group("/api/v1")
	api.GET("", rootHandler(cfg))

	authHandler := handlers.NewAuthHandler(sessions, userSvc, cfg.Session.CookieSecure, log)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireSession(sessions, log, auth.DenyJSON))
	registerBookRoutes(protected, handlers.NewBookHandler(bookSvc, log))
	registerUploadRoutes(protected, handlers.NewUploadHandler(uploadSvc, cfg.Upload.MaxBytes, log))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Book Tracker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"openapi": "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerWebRoutes(r *gin.Engine, h *web.Handler, requireSession gin.HandlerFunc) {
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)

	protected := r.Group("", requireSession)
	protected.GET("/logout", h.Logout)
	protected.GET("/", h.Index)
	protected.POST("/add_book", h.AddBook)
	protected.POST("/update_progress/:book_id", h.UpdateProgress)
	protected.POST("/upload", h.Upload)
	protected.GET("/uploads/:filename", h.Download)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}

func registerBookRoutes(api *gin.RouterGroup, h *handlers.BookHandler) {
	api.GET("/books", h.List)
	api.POST("/books", h.Create)
	api.GET("/books/:id", h.GetByID)
	api.PATCH("/books/:id/progress", h.UpdateProgress)
}

func registerUploadRoutes(api *gin.RouterGroup, h *handlers.UploadHandler) {
	api.GET("/uploads", h.List)
	api.POST("/uploads", h.Create)
}
