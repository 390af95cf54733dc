package news

import (
	"time"

	"github.com/deusflow/aidaily/internal/rss"
)

// PublishedLayout is how Published is rendered in artifacts.
const PublishedLayout = "2006-01-02 15:04"

// Item is one ingested article after cleaning.
type Item struct {
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	RawSummary   string    `json:"raw_summary"`
	Link         string    `json:"link"`
	Source       string    `json:"source"`
	Published    string    `json:"published"`
	Category     string    `json:"category"`
	QualityScore int       `json:"quality_score"`
	CollectedAt  time.Time `json:"collected_at"`
}

// EnrichedItem is an Item plus the generated per-platform copy.
// PlatformContent has a key for every platform; a nil value means generation
// failed and FallbackContent holds the substitute text.
type EnrichedItem struct {
	Item

	PlatformContent map[string]*string `json:"platform_content"`
	FallbackContent map[string]string  `json:"fallback_content,omitempty"`
	SimpleSummary   string             `json:"simple_summary"`
	AIProcessed     bool               `json:"ai_processed"`
	KeyData         []string           `json:"key_data"`
	Failures        []string           `json:"failures,omitempty"`
	ProcessedAt     time.Time          `json:"processed_at"`
}

// Text returns the generated copy for platform, or its fallback.
func (e EnrichedItem) Text(platform string) string {
	if c, ok := e.PlatformContent[platform]; ok && c != nil {
		return *c
	}
	return e.FallbackContent[platform]
}

// Generated reports whether platform has real (non-fallback) content.
func (e EnrichedItem) Generated(platform string) bool {
	c, ok := e.PlatformContent[platform]
	return ok && c != nil
}

// Stats counts what happened to entries while building items.
type Stats struct {
	Entries    int `json:"entries"`
	Relevant   int `json:"relevant"`
	Duplicates int `json:"duplicates"`
	Kept       int `json:"kept"`
}

// Pipeline bundles the pure item-shaping steps configured for a run.
type Pipeline struct {
	Filter          RelevanceFilter
	Taxonomy        Taxonomy
	Scorer          Scorer
	MaxSummaryRunes int
}

// Build turns raw feed entries into deduplicated, categorized, scored items in
// ranked order. collectedAt stands in for missing publish times.
func (p Pipeline) Build(entries []rss.Entry, collectedAt time.Time) ([]Item, Stats) {
	stats := Stats{Entries: len(entries)}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if !p.Filter.Keep(e.Title) {
			continue
		}
		stats.Relevant++
		items = append(items, p.newItem(e, collectedAt))
	}

	items, stats.Duplicates = Dedup(items)

	for i := range items {
		items[i].Category = p.Taxonomy.Categorize(items[i].Title)
		items[i].QualityScore = p.Scorer.Score(items[i])
	}

	Rank(items)
	stats.Kept = len(items)
	return items, stats
}

func (p Pipeline) newItem(e rss.Entry, collectedAt time.Time) Item {
	published := collectedAt.Format(PublishedLayout)
	if e.PublishedAt != nil {
		published = e.PublishedAt.In(collectedAt.Location()).Format(PublishedLayout)
	} else if e.Published != "" {
		published = e.Published
	}

	return Item{
		Title:       e.Title,
		Summary:     CleanN(e.Summary, p.MaxSummaryRunes),
		RawSummary:  e.Summary,
		Link:        e.Link,
		Source:      e.Source,
		Published:   published,
		CollectedAt: collectedAt,
	}
}
