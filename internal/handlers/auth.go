package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"booktracker/internal/auth"
	"booktracker/internal/dto"
	"booktracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login, register and logout.
type AuthHandler struct {
	sessions     *auth.Manager
	userSvc      *service.UserService
	secureCookie bool
	log          *slog.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Manager, userSvc *service.UserService, secureCookie bool, log *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, userSvc: userSvc, secureCookie: secureCookie, log: log}
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		h.log.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": dto.UserResponse{ID: user.ID, Username: user.Username}})
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		h.log.Error("register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	h.log.Info("user registered", "user_id", user.ID)
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": dto.UserResponse{ID: user.ID, Username: user.Username}})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := auth.SessionToken(c); token != "" {
		if err := h.sessions.End(c.Request.Context(), token); err != nil {
			h.log.Warn("end session", "error", err)
		}
	}
	auth.ClearSessionCookie(c, h.secureCookie)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) startSession(c *gin.Context, userID int64) bool {
	token, err := h.sessions.Start(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("start session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return false
	}
	auth.SetSessionCookie(c, token, int(h.sessions.TTL().Seconds()), h.secureCookie)
	return true
}
