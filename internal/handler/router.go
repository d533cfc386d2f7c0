package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-assist/internal/account"
	"github.com/hpn/hpn-assist/internal/chat"
)

// RouterConfig collects the collaborators NewRouter wires together.
type RouterConfig struct {
	Orchestrator   *chat.Orchestrator
	Accounts       *account.Store
	Uploads        *UploadHandler
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	// Apply middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(LoggingMiddleware(logger))

	chatHandler := NewChatHandler(cfg.Orchestrator, WithLogger(logger))
	router.POST("/api/chat", chatHandler.HandleChat)
	router.POST("/chat", chatHandler.HandleLegacyChat)
	router.POST("/api/ai-chat", chatHandler.HandleAssistant)
	router.GET("/health", chatHandler.HandleHealth)

	socket := NewChatSocket(cfg.Orchestrator, cfg.AllowedOrigins, logger)
	router.GET("/ws/chat/:chatId", socket.Handle)

	if cfg.Accounts != nil {
		accounts := NewAccountHandler(cfg.Accounts, logger)
		router.POST("/api/register", accounts.HandleRegister)
		router.POST("/api/login", accounts.HandleLogin)
	}

	if cfg.Uploads != nil {
		router.POST("/api/upload", cfg.Uploads.HandleUpload)
		router.Static("/uploads", cfg.Uploads.Dir())
	}

	return router
}
