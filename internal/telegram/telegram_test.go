package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidaily/internal/logger"
	"github.com/deusflow/aidaily/internal/news"
)

func TestNotifier_Send(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("TOKEN", "@channel", logger.Discard()).WithAPIBase(srv.URL)
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))

	assert.Equal(t, "@channel", payload["chat_id"])
	assert.Equal(t, "<b>hi</b>", payload["text"])
	assert.Equal(t, "HTML", payload["parse_mode"])
	assert.Equal(t, true, payload["disable_web_page_preview"])
}

func TestNotifier_SendSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewNotifier("TOKEN", "1", logger.Discard()).WithAPIBase(srv.URL)
	err := n.Send(context.Background(), "text")

	assert.ErrorContains(t, err, "429")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFormatDigest(t *testing.T) {
	items := []news.EnrichedItem{
		{Item: news.Item{Title: "A <b>&</b> B", Category: "AI大模型", QualityScore: 5, Source: "量子位", Link: "https://example.com/a?x=1&y=2"}, SimpleSummary: "一句话"},
		{Item: news.Item{Title: "second", Summary: "fallback summary"}},
		{Item: news.Item{Title: "third"}},
		{Item: news.Item{Title: "fourth"}},
	}

	msg := FormatDigest("2025-06-02", items)

	assert.True(t, strings.HasPrefix(msg, "🤖 <b>AI与机器人日报 2025-06-02</b>\n共 4 条精选\n"))
	assert.Contains(t, msg, "1. <b>A &lt;b&gt;&amp;&lt;/b&gt; B</b>")
	assert.Contains(t, msg, "一句话")
	assert.Contains(t, msg, "fallback summary")
	assert.Contains(t, msg, `href="https://example.com/a?x=1&amp;y=2"`)
	assert.Contains(t, msg, "3. <b>third</b>")
	assert.NotContains(t, msg, "fourth")
}
