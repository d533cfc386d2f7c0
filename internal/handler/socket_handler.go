package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hpn/hpn-assist/internal/chat"
	"github.com/hpn/hpn-assist/internal/domain"
)

const (
	maxFrameBytes = 64 << 10
	writeWait     = 10 * time.Second
)

// ChatSocket serves GET /ws/chat/:chatId. Every inbound frame carries one
// ChatRequest and receives exactly one normalized Result.
type ChatSocket struct {
	orchestrator *chat.Orchestrator
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewChatSocket creates a ChatSocket accepting browser connections from allowedOrigins.
// Requests without an Origin header (non-browser clients) are always accepted.
func NewChatSocket(orchestrator *chat.Orchestrator, allowedOrigins []string, logger *slog.Logger) *ChatSocket {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &ChatSocket{
		orchestrator: orchestrator,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// session holds the turns of one connection. It lives only as long as the connection.
type session struct {
	chatID string
	turns  []domain.Turn
}

// Handle upgrades the connection and serves frames until the client disconnects.
func (s *ChatSocket) Handle(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	sess := &session{chatID: c.Param("chatId")}
	logger := s.logger.With(slog.String("chat_id", sess.chatID))
	logger.Info("websocket session opened")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			break
		}

		res := s.handleFrame(c, sess, raw)

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(res); err != nil {
			logger.Warn("websocket write failed", slog.String("error", err.Error()))
			break
		}
	}

	logger.Info("websocket session closed", slog.Int("turns", len(sess.turns)))
}

func (s *ChatSocket) handleFrame(c *gin.Context, sess *session, raw []byte) domain.Result {
	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return domain.Failure(domain.KindBadRequest, "Invalid frame: "+err.Error())
	}
	mode, err := req.resolveMode()
	if err != nil {
		return domain.Failure(domain.KindBadRequest, err.Error())
	}

	history := sess.turns
	if req.ChatHistory != nil {
		history = req.ChatHistory
	}
	if err := validateTurns(history); err != nil {
		return domain.Failure(domain.KindBadRequest, err.Error())
	}

	res := s.orchestrator.Handle(c.Request.Context(), history, req.Message, mode)
	if res.OK() {
		next := make([]domain.Turn, 0, len(history)+2)
		next = append(next, history...)
		sess.turns = append(next,
			domain.Turn{Role: domain.RoleUser, Content: req.Message},
			domain.Turn{Role: domain.RoleAssistant, Content: res.Message},
		)
	}
	return res
}

var errMissingRole = errors.New("chat_history entries must carry a role")

func validateTurns(turns []domain.Turn) error {
	for _, t := range turns {
		if t.Role == "" {
			return errMissingRole
		}
	}
	return nil
}
