package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/aidaily/internal/news"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	digestItems    = 3
)

// Notifier posts the daily digest to one chat. Each Send is a single attempt.
type Notifier struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
	log     *slog.Logger
}

func NewNotifier(token, chatID string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// WithAPIBase points the notifier at another Bot API host.
func (n *Notifier) WithAPIBase(base string) *Notifier {
	n.apiBase = strings.TrimRight(base, "/")
	return n
}

// Send posts text as an HTML message without link previews.
func (n *Notifier) Send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			n.log.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}

	n.log.Info("digest sent to Telegram", "chat", n.chatID)
	return nil
}

// FormatDigest renders the top items of the day as a Telegram HTML message.
func FormatDigest(date string, items []news.EnrichedItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤖 <b>AI与机器人日报 %s</b>\n", html.EscapeString(date))
	fmt.Fprintf(&b, "共 %d 条精选\n", len(items))

	for i, it := range items {
		if i == digestItems {
			break
		}
		fmt.Fprintf(&b, "\n%d. <b>%s</b>\n", i+1, html.EscapeString(it.Title))
		fmt.Fprintf(&b, "📂 %s · ⭐ %d · %s\n", html.EscapeString(it.Category), it.QualityScore, html.EscapeString(it.Source))

		summary := it.SimpleSummary
		if summary == "" {
			summary = it.Summary
		}
		if summary != "" {
			b.WriteString(html.EscapeString(summary) + "\n")
		}
		if it.Link != "" {
			fmt.Fprintf(&b, "🔗 <a href=\"%s\">原文</a>\n", html.EscapeString(it.Link))
		}
	}
	return b.String()
}
