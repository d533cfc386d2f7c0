package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hpn/hpn-assist/internal/account"
	"github.com/hpn/hpn-assist/internal/adapter"
	"github.com/hpn/hpn-assist/internal/chat"
	"github.com/hpn/hpn-assist/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// fakeProvider answers with a scripted result and records every request.
type fakeProvider struct {
	mu       sync.Mutex
	result   domain.Result
	requests []domain.ProviderRequest
	probe    *adapter.ProbeStatus
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) AcceptedRoles() domain.RoleSet {
	return domain.NewRoleSet(domain.RoleUser, domain.RoleAssistant)
}

func (f *fakeProvider) Defaults(domain.Mode) adapter.Generation {
	return adapter.Generation{MaxTokens: 100, Temperature: 0.7}
}

func (f *fakeProvider) Send(_ context.Context, req domain.ProviderRequest) domain.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result
}

func (f *fakeProvider) lastRequest(t *testing.T) domain.ProviderRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("provider was never called")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// probingProvider adds the capability probe surface to fakeProvider.
type probingProvider struct {
	*fakeProvider
	status adapter.ProbeStatus
}

func (p *probingProvider) CapabilityStatus() adapter.ProbeStatus { return p.status }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type testEnv struct {
	router   *gin.Engine
	provider *fakeProvider
	uploads  string
}

func newTestEnv(t *testing.T, result domain.Result) *testEnv {
	t.Helper()
	provider := &fakeProvider{result: result}
	return newTestEnvWithProvider(t, provider, provider)
}

func newTestEnvWithProvider(t *testing.T, provider adapter.ChatProvider, fake *fakeProvider) *testEnv {
	t.Helper()

	dir := t.TempDir()
	store, err := account.Open(filepath.Join(dir, "users.db"), account.WithHashCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open account store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	uploads, err := NewUploadHandler(filepath.Join(dir, "uploads"), quietLogger())
	if err != nil {
		t.Fatalf("upload handler: %v", err)
	}

	router := NewRouter(RouterConfig{
		Orchestrator:   chat.NewOrchestrator(provider, quietLogger()),
		Accounts:       store,
		Uploads:        uploads,
		AllowedOrigins: testOrigins,
		Logger:         quietLogger(),
	})
	return &testEnv{router: router, provider: fake, uploads: uploads.Dir()}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}
