package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidaily/internal/logger"
	"github.com/deusflow/aidaily/internal/ratelimit"
)

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{"id":"1","object":"chat.completion","created":1,"model":"glm-4",
"choices":[{"index":0,"message":{"role":"assistant","content":"  生成的文案  "},"finish_reason":"stop"}]}`

func TestService_GenerateSuccess(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, http.StatusOK, okBody, &seen)

	client := NewChatClient("zhipu", "test-key", srv.URL, "glm-4", srv.Client())
	svc := NewService(client, nil, 5*time.Second, logger.Discard())

	out := svc.Generate(context.Background(), "写一段文案", 600)
	require.True(t, out.OK())
	assert.Equal(t, "生成的文案", out.Text)
	assert.False(t, out.Offline)

	assert.Equal(t, "glm-4", seen.Model)
	assert.Equal(t, 600, seen.MaxTokens)
	assert.InDelta(t, 0.7, seen.Temperature, 0.001)
	assert.InDelta(t, 0.9, seen.TopP, 0.001)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
	assert.Equal(t, "写一段文案", seen.Messages[0].Content)
}

func TestService_GenerateNonSuccessStatus(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, `{"error":{"message":"server busy","type":"server_error"}}`, nil)

	client := NewChatClient("zhipu", "test-key", srv.URL, "glm-4", srv.Client())
	svc := NewService(client, nil, 5*time.Second, logger.Discard())

	out := svc.Generate(context.Background(), "prompt", 100)
	assert.False(t, out.OK())
	assert.Empty(t, out.Text)

	var genErr *GenerationError
	require.True(t, errors.As(out.Err, &genErr))
	assert.Equal(t, "zhipu", genErr.Provider)
	assert.Equal(t, http.StatusInternalServerError, genErr.Status)
}

func TestService_GenerateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := NewService(NewChatClient("zhipu", "test-key", url, "glm-4", nil), nil, time.Second, logger.Discard())

	out := svc.Generate(context.Background(), "prompt", 100)
	var genErr *GenerationError
	require.True(t, errors.As(out.Err, &genErr))
	assert.Zero(t, genErr.Status)
}

func TestService_GenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	svc := NewService(NewChatClient("zhipu", "test-key", srv.URL, "glm-4", srv.Client()), nil, 50*time.Millisecond, logger.Discard())

	start := time.Now()
	out := svc.Generate(context.Background(), "prompt", 100)
	assert.False(t, out.OK())
	assert.Less(t, time.Since(start), time.Second)
}

func TestService_Offline(t *testing.T) {
	svc := NewService(nil, nil, 0, logger.Discard())
	require.True(t, svc.Offline())

	for i := 0; i < 3; i++ {
		out := svc.Generate(context.Background(), "prompt", 100)
		assert.True(t, out.OK())
		assert.True(t, out.Offline)
		assert.Equal(t, Placeholder, out.Text)
	}
}

type fakeGenerator struct {
	calls   atomic.Int32
	text    string
	err     error
	explode bool
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls.Add(1)
	if f.explode {
		panic("backend exploded")
	}
	return f.text, f.err
}

func TestService_Budget(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	pacer := ratelimit.NewPacer("ai", 0, 2, logger.Discard())
	svc := NewService(gen, pacer, time.Second, logger.Discard())

	assert.True(t, svc.Generate(context.Background(), "a", 10).OK())
	assert.True(t, svc.Generate(context.Background(), "b", 10).OK())

	out := svc.Generate(context.Background(), "c", 10)
	assert.False(t, out.OK())
	assert.True(t, errors.Is(out.Err, ratelimit.ErrBudgetExhausted))
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestService_NeverPanics(t *testing.T) {
	svc := NewService(&fakeGenerator{explode: true}, nil, time.Second, logger.Discard())

	var out Outcome
	assert.NotPanics(t, func() {
		out = svc.Generate(context.Background(), "prompt", 10)
	})
	assert.False(t, out.OK())
}

func TestService_EmptyText(t *testing.T) {
	svc := NewService(&fakeGenerator{text: "   "}, nil, time.Second, logger.Discard())

	out := svc.Generate(context.Background(), "prompt", 10)
	assert.True(t, errors.Is(out.Err, ErrEmptyResponse))
}
