package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-assist/internal/account"
)

// Credentials is the body of the register and login endpoints.
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AccountHandler serves registration and login.
type AccountHandler struct {
	store  *account.Store
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(store *account.Store, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{store: store, logger: logger}
}

// HandleRegister handles POST /api/register.
func (h *AccountHandler) HandleRegister(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.store.Register(req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User already exists"})
		return
	case err != nil:
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Registration failed"})
		return
	}

	h.logger.Info("user registered", slog.Uint64("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": user.ID, "email": user.Email})
}

// HandleLogin handles POST /api/login.
func (h *AccountHandler) HandleLogin(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
		return
	case err != nil:
		h.logger.Error("login failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "email": user.Email})
}
