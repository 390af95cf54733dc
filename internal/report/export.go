package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/aidaily/internal/enrich"
	"github.com/deusflow/aidaily/internal/news"
)

const (
	xiaohongshuItems = 5
	douyinItems      = 3
	zhihuItems       = 5
	separator        = "============================================================"
)

// XiaohongshuExport is the ready-to-post short-form copy for the top items.
func XiaohongshuExport(date string, items []news.EnrichedItem, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 小红书AI日报发布稿 - %s\n", date)
	fmt.Fprintf(&b, "# 生成时间: %s\n", at.Format(news.PublishedLayout))
	fmt.Fprintf(&b, "# 共 %d 篇，建议每天发布2-3篇\n\n", len(items))

	for i, it := range head(items, xiaohongshuItems) {
		fmt.Fprintf(&b, "\n%s\n", separator)
		fmt.Fprintf(&b, "第%d篇: %s\n\n", i+1, ellipsis(it.Title, 40))

		if text, ok := copyFor(it, enrich.Xiaohongshu); ok {
			b.WriteString(text + "\n")
		} else {
			fmt.Fprintf(&b, "🤖 %s\n\n", it.Title)
			fmt.Fprintf(&b, "%s\n\n", text)
			fmt.Fprintf(&b, "#AI日报 #%s #人工智能\n", orDefault(it.Source, "科技"))
		}

		b.WriteString("\n配图建议: 科技感图片1-2张\n")
		b.WriteString("发布时间: 建议间隔2-3小时\n")
		b.WriteString("---\n")
	}
	return b.String()
}

// DouyinExport is the short-video script for the top items. Items without a
// generated script get the fixed three-part template.
func DouyinExport(date string, items []news.EnrichedItem, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 抖音短视频脚本 - %s\n", date)
	fmt.Fprintf(&b, "# 生成时间: %s\n", at.Format(news.PublishedLayout))
	fmt.Fprintf(&b, "# 共 %d 个主题可选\n\n", len(items))

	for i, it := range head(items, douyinItems) {
		fmt.Fprintf(&b, "\n%s\n", separator)
		fmt.Fprintf(&b, "视频%d: %s\n\n", i+1, ellipsis(it.Title, 20))

		if text, ok := copyFor(it, enrich.Douyin); ok {
			b.WriteString(text + "\n\n")
		} else {
			b.WriteString("【开头5秒】\n(动态画面+大字标题)\n")
			fmt.Fprintf(&b, "%s\n\n", it.Title)
			b.WriteString("【10秒核心】\n(快速切换画面)\n")
			fmt.Fprintf(&b, "%s\n\n", ellipsis(text, 100))
			b.WriteString("【结尾5秒】\n(提问互动)\n")
			b.WriteString("你对这个AI技术感兴趣吗？\n评论区告诉我！\n\n")
		}

		fmt.Fprintf(&b, "#AI科技 #%s #人工智能\n", orDefault(it.Source, "科技"))
		b.WriteString("---\n")
	}
	return b.String()
}

// ZhihuExport is the commentary draft for the top items.
func ZhihuExport(date string, items []news.EnrichedItem, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 知乎AI日报点评稿 - %s\n", date)
	fmt.Fprintf(&b, "# 生成时间: %s\n", at.Format(news.PublishedLayout))
	fmt.Fprintf(&b, "# 共 %d 篇可选\n\n", len(items))

	for i, it := range head(items, zhihuItems) {
		fmt.Fprintf(&b, "\n%s\n", separator)
		fmt.Fprintf(&b, "第%d篇: %s\n", i+1, it.Title)
		fmt.Fprintf(&b, "来源: %s | 分类: %s\n\n", orDefault(it.Source, "未知"), orDefault(it.Category, news.DefaultCategory))

		text, _ := copyFor(it, enrich.Zhihu)
		b.WriteString(text + "\n\n")

		fmt.Fprintf(&b, "原文: %s\n", orDefault(it.Link, "#"))
		b.WriteString("---\n")
	}
	return b.String()
}
