// Package app wires the daily pipeline: collect feeds, enrich the top items
// with generated copy, and write the report artifacts.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/aidaily/internal/ai"
	"github.com/deusflow/aidaily/internal/config"
	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/enrich"
	"github.com/deusflow/aidaily/internal/logger"
	"github.com/deusflow/aidaily/internal/metrics"
	"github.com/deusflow/aidaily/internal/news"
	"github.com/deusflow/aidaily/internal/ratelimit"
	"github.com/deusflow/aidaily/internal/report"
	"github.com/deusflow/aidaily/internal/rss"
	"github.com/deusflow/aidaily/internal/scraper"
	"github.com/deusflow/aidaily/internal/storage"
	"github.com/deusflow/aidaily/internal/telegram"
)

// Describer finds a description for an article page.
type Describer interface {
	Describe(ctx context.Context, url string) (string, error)
}

// App holds one run's worth of wiring.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	run     daily.Run
	summary *metrics.RunSummary
	store   *storage.FileStore

	fetcher   *rss.Fetcher
	feedPacer *ratelimit.Pacer
	describer Describer
	pages     *ratelimit.Pacer

	ai           *ai.Service
	aiPacer      *ratelimit.Pacer
	orchestrator *enrich.Orchestrator
	writer       *report.Writer
	notifier     *telegram.Notifier

	closers []func()
	now     func() time.Time
}

// New prepares a run dated now in the configured zone. A missing API key is
// not an error: generation then runs offline and returns placeholder copy.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, now time.Time) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	loc := cfg.Location()
	run := daily.New(now, loc, cfg.OutputDir, cfg.DocsDir)
	log = log.With("run_id", run.ID.String(), "date", run.Date)

	a := &App{
		cfg:     cfg,
		log:     log,
		run:     run,
		summary: metrics.New(run),
		store:   storage.NewFileStore(logger.Component(log, "storage")),
		now:     func() time.Time { return time.Now().In(loc) },
	}

	a.feedPacer = ratelimit.NewPacer("feeds", cfg.SourceDelay, 0, logger.Component(log, "ratelimit"))
	a.fetcher = rss.NewFetcher(cfg.EntriesPerSource, cfg.FeedTimeout, a.feedPacer, logger.Component(log, "rss"))

	if cfg.FetchMissingSummaries {
		a.describer = scraper.New(cfg.FeedTimeout)
		a.pages = ratelimit.NewPacer("pages", cfg.SourceDelay, 0, logger.Component(log, "ratelimit"))
	}

	gen, err := a.newGenerator(ctx)
	if err != nil {
		return nil, err
	}
	a.aiPacer = ratelimit.NewPacer("ai", cfg.GenerateDelay, cfg.MaxAIRequests, logger.Component(log, "ratelimit"))
	a.ai = ai.NewService(gen, a.aiPacer, cfg.GenerateTimeout, logger.Component(log, "ai"))
	if a.ai.Offline() {
		log.Warn("no API key configured, generation runs offline", "provider", cfg.AIProvider)
	}

	a.orchestrator = enrich.New(a.ai, enrich.DefaultPlatforms(), a.summary, logger.Component(log, "enrich"))
	a.writer = report.NewWriter(a.store, a.orchestrator.Platforms(), logger.Component(log, "report"))

	if cfg.NotifyEnabled() {
		a.notifier = telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger.Component(log, "telegram"))
	}

	return a, nil
}

func (a *App) newGenerator(ctx context.Context) (ai.Generator, error) {
	key := a.cfg.APIKey()
	if key == "" {
		return nil, nil
	}

	switch a.cfg.AIProvider {
	case config.ProviderGemini:
		client, err := ai.NewGeminiClient(ctx, key, a.cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	default:
		return ai.NewChatClient(config.ProviderZhipu, key, a.cfg.ZhipuBaseURL, a.cfg.ZhipuModel, nil), nil
	}
}

// Close releases provider clients.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}

func (a *App) Run() daily.Run { return a.run }

// Execute runs the configured stage, or the three daily stages for "all". In
// "all" mode a failing stage is recorded and the following stages still run
// against whatever artifacts exist. The weekly stage only runs when asked for
// by name. The run summary is always written.
func (a *App) Execute(ctx context.Context) error {
	start := time.Now()
	a.log.Info("pipeline started", "stage", a.cfg.Stage, "offline", a.ai.Offline())

	stages := []struct {
		name  string
		daily bool
		fn    func(context.Context) error
	}{
		{config.StageCollect, true, a.Collect},
		{config.StageProcess, true, a.Process},
		{config.StageReport, true, a.Report},
		{config.StageWeekly, false, a.Weekly},
	}

	var errs []error
	for _, st := range stages {
		if a.cfg.Stage != st.name && !(a.cfg.Stage == config.StageAll && st.daily) {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := st.fn(ctx); err != nil {
			a.log.Error("stage failed", "stage", st.name, "error", err)
			a.summary.RecordStageError(st.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
		}
	}

	snap := a.summary.Snapshot(a.now())
	snap.Pacers = []ratelimit.Stats{a.feedPacer.Stats(), a.aiPacer.Stats()}
	if err := a.store.WriteJSON(a.run.SummaryPath(), snap); err != nil {
		a.log.Error("failed to write run summary", "error", err)
		errs = append(errs, err)
	}

	a.log.Info("pipeline finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"healthy", snap.Healthy,
		"items", snap.ItemsCollected,
		"ai_processed", snap.AIProcessed,
		"artifacts", len(snap.Artifacts))
	return errors.Join(errs...)
}

// Collect fetches every configured source and saves the ranked item list.
// Individual source failures are recorded and skipped.
func (a *App) Collect(ctx context.Context) error {
	sources, err := rss.LoadSources(a.cfg.SourcesConfigPath)
	if err != nil {
		return err
	}
	a.log.Info("sources loaded", "count", len(sources.RSSSources), "path", a.cfg.SourcesConfigPath)

	pipeline := news.Pipeline{
		Filter:          news.NewRelevanceFilter(sources.Keywords),
		Taxonomy:        news.TaxonomyFromRules(sources.Categories, sources.DefaultCategory),
		Scorer:          news.NewScorer(sources.AuthoritativeSources),
		MaxSummaryRunes: a.cfg.MaxSummaryRunes,
	}

	results := a.fetcher.FetchAll(ctx, a.run, sources.RSSSources)
	for _, r := range results {
		a.summary.RecordSource(r.Source.Name, r.Err)
	}
	entries := rss.Entries(results)

	if a.describer != nil {
		a.backfillSummaries(ctx, entries, pipeline.Filter)
	}

	items, stats := pipeline.Build(entries, a.now())
	a.summary.RecordCollection(stats.Entries, stats.Relevant, stats.Duplicates, stats.Kept)
	a.log.Info("collection finished",
		"entries", stats.Entries,
		"relevant", stats.Relevant,
		"duplicates", stats.Duplicates,
		"kept", stats.Kept)

	if err := a.store.SaveItems(a.run, items); err != nil {
		return err
	}
	a.summary.RecordArtifact(a.run.RawPath())
	return nil
}

// backfillSummaries fills empty summaries of relevant entries from the
// article page. Failures leave the entry untouched.
func (a *App) backfillSummaries(ctx context.Context, entries []rss.Entry, filter news.RelevanceFilter) {
	filled := 0
	for i := range entries {
		e := &entries[i]
		if e.Summary != "" || e.Link == "" || !filter.Keep(e.Title) {
			continue
		}
		if err := a.pages.Wait(ctx); err != nil {
			a.log.Warn("summary backfill stopped", "error", err)
			return
		}
		desc, err := a.describer.Describe(ctx, e.Link)
		a.pages.Done()
		if err != nil {
			a.log.Debug("no page description", "link", e.Link, "error", err)
			continue
		}
		e.Summary = desc
		filled++
	}
	if filled > 0 {
		a.log.Info("summaries backfilled from article pages", "count", filled)
	}
}

// Process enriches the top items of today's collection.
func (a *App) Process(ctx context.Context) error {
	items, err := a.store.LoadItems(a.run)
	if err != nil {
		return err
	}

	selected := news.Select(items, a.cfg.TopN)
	a.summary.RecordSelected(len(selected))
	a.log.Info("items selected for generation", "selected", len(selected), "available", len(items))

	enriched := a.orchestrator.EnrichAll(ctx, selected)
	if err := a.store.SaveEnriched(a.run, enriched); err != nil {
		return err
	}
	a.summary.RecordArtifact(a.run.ProcessedPath())
	return nil
}

// Report renders today's artifacts from the enriched list, or from the raw
// list when processing never ran. Notification failures are only logged.
func (a *App) Report(ctx context.Context) error {
	items, err := a.reportItems()
	if err != nil {
		return err
	}

	paths, err := a.writer.Write(a.run, items)
	for _, p := range paths {
		a.summary.RecordArtifact(p)
	}
	if err != nil {
		return err
	}

	if a.notifier != nil {
		if err := a.notifier.Send(ctx, telegram.FormatDigest(a.run.Date, items)); err != nil {
			a.log.Warn("telegram notification failed", "error", err)
		}
	}
	return nil
}

// Weekly writes the report for the seven days ending today. A week without any
// processed day is logged and skipped, not treated as a failure.
func (a *App) Weekly(_ context.Context) error {
	var taxonomy news.Taxonomy
	if sources, err := rss.LoadSources(a.cfg.SourcesConfigPath); err == nil {
		taxonomy = news.TaxonomyFromRules(sources.Categories, sources.DefaultCategory)
	} else {
		a.log.Warn("sources file unavailable, weekly categories use the default taxonomy", "error", err)
	}

	path, err := a.writer.Weekly(a.run, a.store, taxonomy)
	if errors.Is(err, report.ErrEmptyWeek) {
		a.log.Warn("no processed items this week, weekly report skipped", "error", err)
		return nil
	}
	if err != nil {
		return err
	}
	a.summary.RecordArtifact(path)
	return nil
}

func (a *App) reportItems() ([]news.EnrichedItem, error) {
	enriched, err := a.store.LoadEnriched(a.run)
	if err == nil {
		return enriched, nil
	}
	if !errors.Is(err, storage.ErrMissingInput) {
		return nil, err
	}

	raw, rawErr := a.store.LoadItems(a.run)
	if rawErr != nil {
		return nil, rawErr
	}
	a.log.Warn("no processed items for today, reporting raw collection", "items", len(raw))

	out := make([]news.EnrichedItem, 0, len(raw))
	for _, it := range raw {
		out = append(out, news.EnrichedItem{Item: it, SimpleSummary: enrich.Fallback(it)})
	}
	return out, nil
}
