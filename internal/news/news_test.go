package news

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/aidaily/internal/rss"
)

func TestPipelineBuild(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	collected := time.Date(2025, 6, 2, 9, 0, 0, 0, loc)
	published := time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC)

	entries := []rss.Entry{
		{Title: "股市收盘", Summary: "no keyword", Source: "财经"},
		{Title: "机器人专用芯片量产", Summary: "<p>首批&nbsp;1000 个</p>", Source: "某博客", PublishedAt: &published},
		{Title: "OpenAI发布GPT新版本，推理能力大幅提升", Summary: strings.Repeat("模", 150), Source: "量子位", Published: "Mon, 02 Jun"},
		{Title: "机器人专用芯片量产", Summary: "duplicate", Source: "另一个"},
	}

	p := Pipeline{Taxonomy: NewTaxonomy(nil, ""), Scorer: NewScorer(nil)}
	items, stats := p.Build(entries, collected)

	assert.Equal(t, Stats{Entries: 4, Relevant: 3, Duplicates: 1, Kept: 2}, stats)
	require.Len(t, items, 2)

	top := items[0]
	assert.Equal(t, "OpenAI发布GPT新版本，推理能力大幅提升", top.Title)
	assert.Equal(t, "AI大模型", top.Category)
	assert.Equal(t, 5, top.QualityScore)
	assert.Equal(t, "Mon, 02 Jun", top.Published)

	robot := items[1]
	assert.Equal(t, "机器人", robot.Category)
	assert.Equal(t, "首批 1000 个", robot.Summary)
	assert.Equal(t, "<p>首批&nbsp;1000 个</p>", robot.RawSummary)
	assert.Equal(t, "2025-06-02 08:30", robot.Published)
	assert.Equal(t, collected, robot.CollectedAt)

	for _, it := range items {
		assert.GreaterOrEqual(t, it.QualityScore, 0)
		assert.LessOrEqual(t, it.QualityScore, MaxQualityScore)
		assert.NotEmpty(t, it.Category)
	}
}

func TestPipelineBuild_PublishedFallsBackToCollection(t *testing.T) {
	collected := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)

	items, _ := Pipeline{}.Build([]rss.Entry{{Title: "AI news"}}, collected)
	require.Len(t, items, 1)
	assert.Equal(t, "2025-06-02 09:15", items[0].Published)
	assert.Equal(t, DefaultCategory, items[0].Category)
}

func TestEnrichedItem_Text(t *testing.T) {
	generated := "正文"
	e := EnrichedItem{
		PlatformContent: map[string]*string{"a": &generated, "b": nil},
		FallbackContent: map[string]string{"b": "fallback"},
	}

	assert.Equal(t, "正文", e.Text("a"))
	assert.Equal(t, "fallback", e.Text("b"))
	assert.True(t, e.Generated("a"))
	assert.False(t, e.Generated("b"))
	assert.False(t, e.Generated("missing"))
}
