package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/logger"
	"github.com/deusflow/aidaily/internal/ratelimit"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>OpenAI 发布新模型</title>
    <link>https://example.com/1</link>
    <description>&lt;p&gt;模型参数达到1000亿&lt;/p&gt;</description>
    <pubDate>Mon, 02 Jun 2025 08:30:00 +0000</pubDate>
  </item>
  <item>
    <title>机器人进入工厂</title>
    <link>https://example.com/2</link>
  </item>
  <item>
    <title></title>
    <link>https://example.com/empty</link>
  </item>
  <item>
    <title>股市收盘</title>
    <link>https://example.com/3</link>
  </item>
  <item>
    <title>Fourth item is over the limit</title>
    <link>https://example.com/4</link>
  </item>
</channel>
</rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeed)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testRun(t *testing.T) daily.Run {
	return daily.New(time.Now(), time.UTC, t.TempDir(), t.TempDir())
}

func TestFetchAll_LimitsAndDefaults(t *testing.T) {
	srv := feedServer(t)
	f := NewFetcher(3, 5*time.Second, nil, logger.Discard())

	results := f.FetchAll(context.Background(), testRun(t), []Source{{Name: "测试源", URL: srv.URL + "/feed.xml"}})
	require.Len(t, results, 1)
	require.True(t, results[0].OK())

	entries := results[0].Entries
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, "OpenAI 发布新模型", first.Title)
	assert.Equal(t, "测试源", first.Source)
	assert.Equal(t, "https://example.com/1", first.Link)
	assert.Contains(t, first.Summary, "1000亿")
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2025, first.PublishedAt.Year())

	second := entries[1]
	assert.Empty(t, second.Summary)
	assert.Empty(t, second.Published)
	assert.Nil(t, second.PublishedAt)

	assert.Equal(t, "股市收盘", entries[2].Title)
}

func TestFetchAll_FailingSourceDoesNotStopRun(t *testing.T) {
	srv := feedServer(t)
	pacer := ratelimit.NewPacer("feeds", time.Millisecond, 0, logger.Discard())
	f := NewFetcher(3, 5*time.Second, pacer, logger.Discard())

	results := f.FetchAll(context.Background(), testRun(t), []Source{
		{Name: "broken", URL: srv.URL + "/broken.xml"},
		{Name: "good", URL: srv.URL + "/feed.xml"},
	})
	require.Len(t, results, 2)

	assert.False(t, results[0].OK())
	var fetchErr *SourceFetchError
	require.True(t, errors.As(results[0].Err, &fetchErr))
	assert.Equal(t, "broken", fetchErr.Source)

	assert.True(t, results[1].OK())
	assert.Len(t, Entries(results), 3)
	assert.Equal(t, 2, pacer.Stats().Used)
}

func TestFetchAll_CancelledContext(t *testing.T) {
	srv := feedServer(t)
	f := NewFetcher(3, time.Second, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.FetchAll(ctx, testRun(t), []Source{{Name: "good", URL: srv.URL + "/feed.xml"}})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `rss_sources:
  - name: 机器之心
    url: https://example.com/jiqizhixin.xml
  - name: no-url
  - url: https://example.com/anonymous.xml
keywords: [AI, 机器人]
categories:
  - label: 机器人
    keywords: [机器人, robot]
  - label: 芯片硬件
    keywords: [芯片]
default_category: AI综合
authoritative_sources: [机器之心]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadSources(path)
	require.NoError(t, err)

	require.Len(t, cfg.RSSSources, 2)
	assert.Equal(t, "机器之心", cfg.RSSSources[0].Name)
	assert.Equal(t, "https://example.com/anonymous.xml", cfg.RSSSources[1].Name)
	assert.Equal(t, []string{"AI", "机器人"}, cfg.Keywords)
	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "机器人", cfg.Categories[0].Label)
	assert.Equal(t, "AI综合", cfg.DefaultCategory)
	assert.Equal(t, []string{"机器之心"}, cfg.AuthoritativeSources)
}

func TestLoadSources_Errors(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rss_sources: []\n"), 0o644))
	_, err = LoadSources(path)
	assert.Error(t, err)
}

func TestLoadSources_ShippedConfig(t *testing.T) {
	cfg, err := LoadSources(filepath.Join("..", "..", "configs", "sources.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.RSSSources)
	for _, s := range cfg.RSSSources {
		assert.NotEmpty(t, s.Name)
		assert.True(t, strings.HasPrefix(s.URL, "https://"), s.URL)
	}
	assert.Contains(t, cfg.Keywords, "机器人")
	require.NotEmpty(t, cfg.Categories)
	assert.Equal(t, "AI大模型", cfg.Categories[0].Label)
	assert.Equal(t, "AI综合", cfg.DefaultCategory)
}
