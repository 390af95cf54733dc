package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/ratelimit"
)

// SourcesFile is the YAML source configuration:
//
//	rss_sources:
//	  - name: 机器之心
//	    url: https://...
//	keywords: [AI, 机器人]
//	categories:
//	  - label: 机器人
//	    keywords: [机器人, robot]
type SourcesFile struct {
	RSSSources           []Source       `yaml:"rss_sources"`
	Keywords             []string       `yaml:"keywords"`
	Categories           []CategoryRule `yaml:"categories"`
	DefaultCategory      string         `yaml:"default_category"`
	AuthoritativeSources []string       `yaml:"authoritative_sources"`
}

// Source is one configured feed.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// CategoryRule is one (label, keywords) pair; order in the file is priority order.
type CategoryRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// LoadSources reads the source list and optional taxonomy from a YAML file.
// Sources without a URL are skipped; a file with no usable source is an error.
func LoadSources(path string) (*SourcesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer f.Close()

	var cfg SourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources file %s: %w", path, err)
	}

	sources := cfg.RSSSources[:0]
	for _, s := range cfg.RSSSources {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			continue
		}
		if s.Name == "" {
			s.Name = s.URL
		}
		sources = append(sources, s)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no rss_sources in %s", path)
	}
	cfg.RSSSources = sources
	return &cfg, nil
}

// Entry is a feed item reduced to the fields the pipeline reads.
// Title is required. Summary is the description, else the content, else "".
// Link and Published default to "". PublishedAt is nil when the feed date
// could not be parsed.
type Entry struct {
	Title       string
	Summary     string
	Link        string
	Source      string
	Published   string
	PublishedAt *time.Time
}

// SourceFetchError means one feed could not be fetched or parsed.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch source %q: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// SourceResult is the outcome of fetching one source: entries or an error.
type SourceResult struct {
	Source  Source
	Entries []Entry
	Err     error
}

func (r SourceResult) OK() bool { return r.Err == nil }

// Fetcher pulls a bounded number of entries per source, one source at a time.
type Fetcher struct {
	parser  *gofeed.Parser
	limit   int
	timeout time.Duration
	pacer   *ratelimit.Pacer
	log     *slog.Logger
}

// NewFetcher builds a fetcher. pacer spaces source fetches; it may be nil.
func NewFetcher(limit int, timeout time.Duration, pacer *ratelimit.Pacer, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "aidaily/1.0 (+rss collector)"

	return &Fetcher{
		parser:  parser,
		limit:   limit,
		timeout: timeout,
		pacer:   pacer,
		log:     log,
	}
}

// FetchAll fetches every source in order. A failing source yields a result
// carrying a *SourceFetchError and the next source is still attempted.
func (f *Fetcher) FetchAll(ctx context.Context, run daily.Run, sources []Source) []SourceResult {
	results := make([]SourceResult, 0, len(sources))
	ok := 0

	for _, src := range sources {
		if f.pacer != nil {
			if err := f.pacer.Wait(ctx); err != nil {
				results = append(results, SourceResult{Source: src, Err: &SourceFetchError{Source: src.Name, Err: err}})
				continue
			}
		}

		entries, err := f.fetch(ctx, src)
		if f.pacer != nil {
			f.pacer.Done()
		}
		if err != nil {
			f.log.Warn("source fetch failed", "run", run.ID, "source", src.Name, "error", err)
			results = append(results, SourceResult{Source: src, Err: &SourceFetchError{Source: src.Name, Err: err}})
			continue
		}

		ok++
		f.log.Info("source fetched", "source", src.Name, "entries", len(entries))
		results = append(results, SourceResult{Source: src, Entries: entries})
	}

	f.log.Info("feeds processed", "run", run.ID, "ok", ok, "total", len(sources))
	return results
}

func (f *Fetcher) fetch(ctx context.Context, src Source) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, min(len(feed.Items), max(f.limit, 0)))
	for _, it := range feed.Items {
		if f.limit > 0 && len(entries) >= f.limit {
			break
		}
		if it == nil || strings.TrimSpace(it.Title) == "" {
			continue
		}
		entries = append(entries, entryFromItem(src.Name, it))
	}
	return entries, nil
}

func entryFromItem(source string, it *gofeed.Item) Entry {
	e := Entry{
		Title:     it.Title,
		Summary:   it.Description,
		Link:      it.Link,
		Source:    source,
		Published: it.Published,
	}
	if e.Summary == "" {
		e.Summary = it.Content
	}
	if it.PublishedParsed != nil {
		t := *it.PublishedParsed
		e.PublishedAt = &t
	} else if it.UpdatedParsed != nil {
		t := *it.UpdatedParsed
		e.PublishedAt = &t
	}
	return e
}

// Entries flattens the successful results, keeping source order.
func Entries(results []SourceResult) []Entry {
	var all []Entry
	for _, r := range results {
		all = append(all, r.Entries...)
	}
	return all
}
