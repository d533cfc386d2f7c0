package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-assist/internal/adapter"
	"github.com/hpn/hpn-assist/internal/chat"
	"github.com/hpn/hpn-assist/internal/domain"
)

// ChatRequest is the body of POST /api/chat and of every websocket frame.
type ChatRequest struct {
	Message     string        `json:"message"`
	ChatHistory []domain.Turn `json:"chat_history" binding:"omitempty,dive"`
	Mode        string        `json:"mode"`
	ExpertMode  *bool         `json:"expert_mode"`
}

// resolveMode prefers the explicit mode and falls back to the legacy expert flag.
func (r ChatRequest) resolveMode() (domain.Mode, error) {
	if r.Mode == "" && r.ExpertMode != nil {
		return domain.ModeFromExpertFlag(*r.ExpertMode), nil
	}
	return domain.ParseMode(r.Mode)
}

// LegacyChatRequest is the body of POST /chat: the last message is the current one.
type LegacyChatRequest struct {
	Messages   []domain.Turn `json:"messages" binding:"required,min=1,dive"`
	ExpertMode bool          `json:"expert_mode"`
}

// LegacyChatResponse is the reply of POST /chat.
type LegacyChatResponse struct {
	Reply string      `json:"reply"`
	Role  domain.Role `json:"role"`
}

// AssistantRequest is the body of POST /api/ai-chat.
type AssistantRequest struct {
	Message string `json:"message"`
}

// AssistantResponse is the reply of POST /api/ai-chat.
type AssistantResponse struct {
	Reply string `json:"reply"`
}

// ChatHandler serves the chat endpoints on top of one Orchestrator.
type ChatHandler struct {
	orchestrator *chat.Orchestrator
	logger       *slog.Logger
}

// ChatHandlerOption is a functional option for configuring ChatHandler.
type ChatHandlerOption func(*ChatHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ChatHandlerOption {
	return func(h *ChatHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(orchestrator *chat.Orchestrator, opts ...ChatHandlerOption) *ChatHandler {
	h := &ChatHandler{
		orchestrator: orchestrator,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// rejectRequest logs why a request never reached the orchestrator and answers 400.
func (h *ChatHandler) rejectRequest(c *gin.Context, message string) {
	h.logger.Warn("chat request rejected",
		slog.String("request_id", c.GetString(requestIDKey)),
		slog.String("path", c.FullPath()),
		slog.String("reason", message),
	)
	writeError(c, http.StatusBadRequest, message)
}

// HandleChat handles POST /api/chat.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mode, err := req.resolveMode()
	if err != nil {
		h.rejectRequest(c, err.Error())
		return
	}

	res := h.orchestrator.Handle(c.Request.Context(), req.ChatHistory, req.Message, mode)
	writeResult(c, res)
}

// HandleLegacyChat handles POST /chat.
func (h *ChatHandler) HandleLegacyChat(c *gin.Context) {
	var req LegacyChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectRequest(c, "Invalid request body: "+err.Error())
		return
	}

	last := len(req.Messages) - 1
	if req.Messages[last].Role != domain.RoleUser {
		h.rejectRequest(c, "The last message must have role user.")
		return
	}
	res := h.orchestrator.Handle(
		c.Request.Context(),
		req.Messages[:last],
		req.Messages[last].Content,
		domain.ModeFromExpertFlag(req.ExpertMode),
	)
	if !res.OK() {
		writeError(c, StatusForKind(res.Kind), res.Message)
		return
	}
	c.JSON(http.StatusOK, LegacyChatResponse{Reply: res.Message, Role: res.Role})
}

// HandleAssistant handles POST /api/ai-chat.
// It always answers 200; failures are rendered as bracketed reply text.
func (h *ChatHandler) HandleAssistant(c *gin.Context) {
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res := h.orchestrator.Handle(c.Request.Context(), nil, req.Message, domain.ModeGeneral)
	reply := res.Message
	if !res.OK() {
		reply = "[" + res.Message + "]"
	}
	c.JSON(http.StatusOK, AssistantResponse{Reply: reply})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string               `json:"status"`
	Provider string               `json:"provider"`
	Model    string               `json:"model"`
	Probe    *adapter.ProbeStatus `json:"probe,omitempty"`
}

// HandleHealth handles GET /health.
// The capability probe is advisory: an unavailable probe reports "degraded" but still answers 200.
func (h *ChatHandler) HandleHealth(c *gin.Context) {
	provider := h.orchestrator.Provider()
	resp := HealthResponse{
		Status:   "healthy",
		Provider: provider.Name(),
		Model:    provider.Model(),
	}

	if prober, ok := provider.(adapter.CapabilityProber); ok {
		status := prober.CapabilityStatus()
		resp.Probe = &status
		if status.State == adapter.ProbeUnavailable {
			resp.Status = "degraded"
		}
	}

	c.JSON(http.StatusOK, resp)
}
