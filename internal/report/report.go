// Package report renders the enriched items of a run into the daily report,
// the docs copies and the per-platform export files.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/enrich"
	"github.com/deusflow/aidaily/internal/news"
)

const (
	reportItems      = 8
	reportCopyRunes  = 300
	reportSources    = 5
	generatedAtStamp = "2006-01-02 15:04:05"
)

// Store is the artifact sink (storage.FileStore).
type Store interface {
	WriteText(path, text string) error
	WriteFile(path string, write func(w io.Writer) error) error
}

// Writer produces every report artifact of a run.
type Writer struct {
	store     Store
	platforms []enrich.Platform
	log       *slog.Logger
	now       func() time.Time
}

func NewWriter(store Store, platforms []enrich.Platform, log *slog.Logger) *Writer {
	if len(platforms) == 0 {
		platforms = enrich.DefaultPlatforms()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Writer{store: store, platforms: platforms, log: log, now: time.Now}
}

// Write renders and stores all artifacts, returning their paths in write order.
// It stops at the first failed write.
func (w *Writer) Write(run daily.Run, items []news.EnrichedItem) ([]string, error) {
	at := w.now().In(run.StartedAt.Location())
	markdown := Markdown(run.Date, items, at)

	page, err := RenderHTML(fmt.Sprintf("AI与机器人日报 %s", run.Date), markdown)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	texts := []struct {
		path string
		body string
	}{
		{run.ReportPath(), markdown},
		{run.DocsPath("md"), markdown},
		{run.DocsPath("html"), page},
		{run.ExportPath(enrich.Xiaohongshu), XiaohongshuExport(run.Date, items, at)},
		{run.ExportPath(enrich.Douyin), DouyinExport(run.Date, items, at)},
		{run.ExportPath(enrich.Zhihu), ZhihuExport(run.Date, items, at)},
	}

	written := make([]string, 0, len(texts)+1)
	for _, t := range texts {
		if err := w.store.WriteText(t.path, t.body); err != nil {
			return written, err
		}
		written = append(written, t.path)
	}

	err = w.store.WriteFile(run.WorkbookPath(), func(out io.Writer) error {
		return WriteWorkbook(out, items, w.platforms)
	})
	if err != nil {
		return written, err
	}
	written = append(written, run.WorkbookPath())

	w.log.Info("report written", "date", run.Date, "items", len(items), "artifacts", len(written))
	return written, nil
}

// Markdown renders the daily report: the top items with their short-form copy,
// statistics and publishing advice.
func Markdown(date string, items []news.EnrichedItem, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 🤖 AI与机器人日报 %s\n\n", date)
	fmt.Fprintf(&b, "> 自动生成时间: %s\n", at.Format(generatedAtStamp))
	fmt.Fprintf(&b, "> 共收集到 %d 条资讯\n\n", len(items))

	b.WriteString("## 📰 今日精选资讯\n\n")
	for i, it := range head(items, reportItems) {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, orDefault(it.Title, "无标题"))
		fmt.Fprintf(&b, "**来源**: %s\n", orDefault(it.Source, "未知"))
		fmt.Fprintf(&b, "**分类**: %s | **质量评分**: %d/%d\n", orDefault(it.Category, news.DefaultCategory), it.QualityScore, news.MaxQualityScore)
		fmt.Fprintf(&b, "**发布时间**: %s\n\n", orDefault(it.Published, "未知"))
		fmt.Fprintf(&b, "**摘要**: %s\n\n", orDefault(it.Summary, "暂无摘要"))

		if it.SimpleSummary != "" && it.SimpleSummary != it.Summary {
			fmt.Fprintf(&b, "**一句话总结**: %s\n\n", it.SimpleSummary)
		}
		if len(it.KeyData) > 0 {
			fmt.Fprintf(&b, "**关键数据**: %s\n\n", strings.Join(it.KeyData, "、"))
		}

		if it.Generated(enrich.Xiaohongshu) {
			text := ellipsis(it.Text(enrich.Xiaohongshu), reportCopyRunes)
			f := fence(text)
			fmt.Fprintf(&b, "**小红书文案**:\n%s\n%s\n%s\n\n", f, text, f)
		}

		fmt.Fprintf(&b, "**原文链接**: [点击查看](%s)\n\n", orDefault(it.Link, "#"))
		b.WriteString("---\n\n")
	}

	processed := 0
	for _, it := range items {
		if it.AIProcessed {
			processed++
		}
	}

	b.WriteString("## 📊 今日统计\n\n")
	fmt.Fprintf(&b, "- **资讯总数**: %d 条\n", len(items))
	fmt.Fprintf(&b, "- **AI处理成功**: %d 条\n", processed)
	fmt.Fprintf(&b, "- **主要来源**: %s\n", strings.Join(head(uniqueSources(items), reportSources), ", "))
	fmt.Fprintf(&b, "- **分类分布**: %s\n", categoryBreakdown(items))
	fmt.Fprintf(&b, "- **生成时间**: %s\n\n", at.Format(news.PublishedLayout))

	b.WriteString(`## 🎯 发布建议

### 小红书发布
1. 使用生成的小红书导出文件
2. 每篇配1-2张相关图片
3. 发布时间: 11:00-13:00 或 19:00-21:00

### 抖音发布
1. 使用生成的抖音脚本
2. 制作15-30秒短视频
3. 添加热门话题和BGM

### 知乎发布
1. 使用生成的知乎点评，补充个人观点
2. 优先回答相关热门问题

> 本报告由自动化系统生成，仅供学习参考。
`)
	return b.String()
}

// fence returns a backtick fence longer than any backtick run inside text, so
// generated copy can never close the code block early.
func fence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}

// copyFor returns the platform text for it and whether it was generated.
// Items read from the raw artifact carry no platform content at all; they get
// the same excerpt the orchestrator would have used.
func copyFor(it news.EnrichedItem, platform string) (string, bool) {
	if it.Generated(platform) {
		return it.Text(platform), true
	}
	if text := it.FallbackContent[platform]; text != "" {
		return text, false
	}
	return enrich.Fallback(it.Item), false
}

func uniqueSources(items []news.EnrichedItem) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, it := range items {
		if it.Source == "" || seen[it.Source] {
			continue
		}
		seen[it.Source] = true
		sources = append(sources, it.Source)
	}
	return sources
}

// categoryBreakdown lists categories in order of first appearance.
func categoryBreakdown(items []news.EnrichedItem) string {
	var order []string
	counts := make(map[string]int)
	for _, it := range items {
		c := orDefault(it.Category, news.DefaultCategory)
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%s %d", c, counts[c]))
	}
	return strings.Join(parts, ", ")
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func ellipsis(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
