// Package enrich turns ranked news items into per-platform copy.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deusflow/aidaily/internal/ai"
	"github.com/deusflow/aidaily/internal/news"
)

const (
	fallbackRunes     = 150
	simpleSummaryToks = 100
)

// Generator is the fail-soft generation call (ai.Service).
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) ai.Outcome
}

// Recorder receives per-call results; metrics.RunSummary implements it.
type Recorder interface {
	RecordGeneration(platform string, out ai.Outcome)
	RecordFallback(platform string)
	RecordEnriched(aiProcessed bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(string, ai.Outcome) {}
func (nopRecorder) RecordFallback(string)               {}
func (nopRecorder) RecordEnriched(bool)                 {}

// Orchestrator enriches items one at a time, one call at a time.
type Orchestrator struct {
	gen       Generator
	platforms []Platform
	rec       Recorder
	log       *slog.Logger
	now       func() time.Time
}

// New builds an orchestrator. Empty platforms means DefaultPlatforms; rec may be nil.
func New(gen Generator, platforms []Platform, rec Recorder, log *slog.Logger) *Orchestrator {
	if len(platforms) == 0 {
		platforms = DefaultPlatforms()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		gen:       gen,
		platforms: platforms,
		rec:       rec,
		log:       log,
		now:       time.Now,
	}
}

func (o *Orchestrator) Platforms() []Platform { return o.platforms }

// EnrichAll keeps the input order. Every returned item has an entry for every
// platform, generated or nil with a fallback.
func (o *Orchestrator) EnrichAll(ctx context.Context, items []news.Item) []news.EnrichedItem {
	out := make([]news.EnrichedItem, 0, len(items))
	processed := 0
	for i, it := range items {
		e := o.Enrich(ctx, it)
		if e.AIProcessed {
			processed++
		}
		o.log.Info("item enriched", "n", i+1, "of", len(items), "title", truncate(it.Title, 50), "ai_processed", e.AIProcessed, "failures", len(e.Failures))
		out = append(out, e)
	}
	o.log.Info("enrichment done", "total", len(out), "ai_processed", processed, "partial", len(out)-processed)
	return out
}

// Enrich generates copy for every platform plus a one-sentence summary.
// Failed platforms get a nil entry and the summary excerpt as fallback.
func (o *Orchestrator) Enrich(ctx context.Context, it news.Item) news.EnrichedItem {
	e := news.EnrichedItem{
		Item:            it,
		PlatformContent: make(map[string]*string, len(o.platforms)),
		KeyData:         ExtractKeyData(it.Summary),
	}
	excerpt := Fallback(it)

	for _, p := range o.platforms {
		out := o.gen.Generate(ctx, p.Prompt(it), p.MaxTokens)
		o.rec.RecordGeneration(p.ID, out)

		if out.OK() {
			text := out.Text
			e.PlatformContent[p.ID] = &text
			continue
		}

		e.PlatformContent[p.ID] = nil
		if e.FallbackContent == nil {
			e.FallbackContent = make(map[string]string, len(o.platforms))
		}
		e.FallbackContent[p.ID] = excerpt
		e.Failures = append(e.Failures, fmt.Sprintf("%s: %v", p.ID, out.Err))
		o.rec.RecordFallback(p.ID)
	}

	if out := o.gen.Generate(ctx, SimpleSummaryPrompt(it.Title), simpleSummaryToks); out.OK() {
		e.SimpleSummary = out.Text
	} else {
		e.SimpleSummary = excerpt
	}

	e.AIProcessed = e.Generated(o.primary())
	e.ProcessedAt = o.now()
	o.rec.RecordEnriched(e.AIProcessed)
	return e
}

func (o *Orchestrator) primary() string {
	if _, ok := PlatformByID(o.platforms, Primary); ok {
		return Primary
	}
	return o.platforms[0].ID
}

// Fallback is the locally derived substitute text: the first 150 runes of the
// cleaned summary, or the title when there is no summary. Never empty for an
// item with a title.
func Fallback(it news.Item) string {
	if s := strings.TrimSpace(it.Summary); s != "" {
		return truncate(s, fallbackRunes)
	}
	return it.Title
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
