package adapter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpn/hpn-assist/internal/domain"
)

const testSecret = "sk-test-0123456789abcdefghijklmnop"

// upstream is a scripted fake provider that records what it receives.
type upstream struct {
	t      *testing.T
	server *httptest.Server
	calls  atomic.Int32

	mu      sync.Mutex
	path    string
	headers http.Header
	body    map[string]any

	status int
	reply  any
	delay  time.Duration
}

func newUpstream(t *testing.T, status int, reply any) *upstream {
	t.Helper()
	return newSlowUpstream(t, 0, status, reply)
}

// newSlowUpstream answers only after delay, or never if the client gives up first.
func newSlowUpstream(t *testing.T, delay time.Duration, status int, reply any) *upstream {
	t.Helper()
	u := &upstream{t: t, status: status, reply: reply, delay: delay}
	u.server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)

	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	u.mu.Lock()
	u.path = r.URL.Path
	u.headers = r.Header.Clone()
	u.body = body
	u.mu.Unlock()

	if u.delay > 0 {
		select {
		case <-time.After(u.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(u.status)
	switch v := u.reply.(type) {
	case string:
		_, _ = io.WriteString(w, v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (u *upstream) lastBody() map[string]any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.body
}

func (u *upstream) lastHeaders() http.Header {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.headers
}

func (u *upstream) lastPath() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.path
}

func testConfig(endpoint, model string) domain.ProviderConfig {
	return domain.ProviderConfig{APIKey: testSecret, Endpoint: endpoint, ModelID: model}
}

func simpleRequest(model string) domain.ProviderRequest {
	return domain.ProviderRequest{
		Model:        model,
		Messages:     domain.Conversation{{Role: domain.RoleUser, Content: "hello"}},
		SystemPrompt: "be nice",
		MaxTokens:    64,
		Temperature:  0.7,
	}
}
