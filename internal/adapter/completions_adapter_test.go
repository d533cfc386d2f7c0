package adapter

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-assist/internal/domain"
)

func completionReply(text string) map[string]any {
	return map[string]any{
		"id":      "cmpl-1",
		"object":  "text_completion",
		"created": 1700000000,
		"model":   DefaultCompletionsModel,
		"choices": []map[string]any{
			{"index": 0, "text": text, "finish_reason": "stop"},
		},
	}
}

func newTestCompletions(t *testing.T, u *upstream, opts ...Option) *CompletionsAdapter {
	t.Helper()
	a, err := NewCompletionsAdapter(testConfig(u.server.URL, DefaultCompletionsModel), opts...)
	require.NoError(t, err)
	return a
}

func TestNewCompletionsAdapter_MissingKey(t *testing.T) {
	_, err := NewCompletionsAdapter(domain.ProviderConfig{Endpoint: DefaultCompletionsEndpoint, ModelID: DefaultCompletionsModel})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingAPIKey))
}

func TestRenderPrompt(t *testing.T) {
	tests := []struct {
		name   string
		system string
		turns  domain.Conversation
		want   string
	}{
		{
			name:   "single user turn",
			system: "be nice",
			turns:  domain.Conversation{{Role: domain.RoleUser, Content: "hello"}},
			want:   "be nice\n\nUser: hello\nAI:",
		},
		{
			name:   "multi turn",
			system: "sys",
			turns: domain.Conversation{
				{Role: domain.RoleUser, Content: "hi"},
				{Role: domain.RoleAssistant, Content: "hello"},
				{Role: domain.RoleUser, Content: "bye"},
			},
			want: "sys\n\nUser: hi\nAI: hello\nUser: bye\nAI:",
		},
		{
			name:  "no instruction",
			turns: domain.Conversation{{Role: domain.RoleUser, Content: "x"}},
			want:  "User: x\nAI:",
		},
		{
			name:   "system turns are skipped",
			system: "sys",
			turns: domain.Conversation{
				{Role: domain.RoleSystem, Content: "ignore me"},
				{Role: domain.RoleUser, Content: "x"},
			},
			want: "sys\n\nUser: x\nAI:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderPrompt(tt.system, tt.turns))
		})
	}
}

func TestCompletionsAdapter_BuildRequest(t *testing.T) {
	a := &CompletionsAdapter{}
	got := a.buildRequest(simpleRequest("m"))

	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, []string{"User:", "AI:"}, got.Stop)
	assert.Equal(t, "be nice\n\nUser: hello\nAI:", got.Prompt)
}

func TestCompletionsAdapter_Success(t *testing.T) {
	u := newUpstream(t, http.StatusOK, completionReply(" Sure, here you go.\n"))
	a := newTestCompletions(t, u)

	res := a.Send(context.Background(), simpleRequest(a.Model()))

	assert.Equal(t, domain.Success("Sure, here you go."), res)
	assert.Equal(t, "/v1/completions", u.lastPath())
	assert.Equal(t, "Bearer "+testSecret, u.lastHeaders().Get("Authorization"))

	body := u.lastBody()
	assert.Equal(t, DefaultCompletionsModel, body["model"])
	assert.Equal(t, "be nice\n\nUser: hello\nAI:", body["prompt"])
	assert.EqualValues(t, 64, body["max_tokens"])
}

func TestCompletionsAdapter_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		reply    any
		wantKind domain.ErrorKind
		contains string
	}{
		{"401", http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "invalid key " + testSecret}}, domain.KindAuthentication, "Verify the configured API key"},
		{"429", http.StatusTooManyRequests, `{"message":"rate limited"}`, domain.KindRateLimited, "retry later"},
		{"400", http.StatusBadRequest, `{"error":{"message":"prompt too long"}}`, domain.KindBadRequest, "malformed"},
		{"502 plain body", http.StatusBadGateway, "bad gateway", domain.KindUpstream, "HTTP error 502 from together: bad gateway"},
		{"504", http.StatusGatewayTimeout, "", domain.KindTimeout, "timed out"},
		{"invalid json", http.StatusOK, "not json", domain.KindMalformed, "without generated text"},
		{"no choices", http.StatusOK, map[string]any{"choices": []any{}}, domain.KindMalformed, "without generated text"},
		{"blank text", http.StatusOK, completionReply("   "), domain.KindMalformed, "without generated text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpstream(t, tt.status, tt.reply)
			a := newTestCompletions(t, u)

			res := a.Send(context.Background(), simpleRequest(a.Model()))

			assert.Equal(t, domain.StatusError, res.Status)
			assert.Equal(t, domain.RoleSystem, res.Role)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Contains(t, res.Message, tt.contains)
			assert.NotContains(t, res.Message, testSecret)
			assert.EqualValues(t, 1, u.calls.Load())
		})
	}
}

func TestCompletionsAdapter_Timeout(t *testing.T) {
	u := newSlowUpstream(t, 2*time.Second, http.StatusOK, completionReply("late"))
	a := newTestCompletions(t, u, WithTimeout(100*time.Millisecond))

	start := time.Now()
	res := a.Send(context.Background(), simpleRequest(a.Model()))

	assert.Equal(t, domain.KindTimeout, res.Kind)
	assert.Equal(t, "Request timed out. Please try again.", res.Message)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCompletionsAdapter_CallerCancellation(t *testing.T) {
	u := newSlowUpstream(t, 2*time.Second, http.StatusOK, completionReply("late"))
	a := newTestCompletions(t, u)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res := a.Send(ctx, simpleRequest(a.Model()))

	assert.Equal(t, domain.StatusError, res.Status)
	assert.Equal(t, domain.KindUnexpected, res.Kind)
}

func TestCompletionsAdapter_InvalidRequestNeverCallsUpstream(t *testing.T) {
	u := newUpstream(t, http.StatusOK, completionReply("x"))
	a := newTestCompletions(t, u)

	req := simpleRequest(a.Model())
	req.Messages = nil
	res := a.Send(context.Background(), req)

	assert.Equal(t, domain.StatusError, res.Status)
	assert.EqualValues(t, 0, u.calls.Load())
}

func TestNew(t *testing.T) {
	cfg := testConfig("https://example.invalid", "m")

	for _, p := range domain.ProviderTypes {
		t.Run(string(p), func(t *testing.T) {
			provider, err := New(p, cfg)
			require.NoError(t, err)
			assert.Equal(t, string(p), provider.Name())
			assert.True(t, provider.AcceptedRoles().Contains(domain.RoleUser))
			assert.False(t, provider.AcceptedRoles().Contains(domain.RoleSystem))
		})
	}

	_, err := New("openrouter", cfg)
	var unknown *UnknownProviderError
	assert.ErrorAs(t, err, &unknown)
}
