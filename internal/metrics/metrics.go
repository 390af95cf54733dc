package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/deusflow/aidaily/internal/ai"
	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/ratelimit"
)

// RunSummary aggregates what happened during one run. It is owned by the run,
// not global; all methods are safe for concurrent use.
type RunSummary struct {
	mu sync.RWMutex

	runID     string
	date      string
	startedAt time.Time

	// Sources
	sourcesOK      int
	sourceFailures []SourceFailure

	// Items
	entriesFetched  int
	entriesRelevant int
	duplicates      int
	itemsCollected  int
	itemsSelected   int

	// Generation
	generationsOK      int
	generationsFailed  int
	generationsOffline int
	budgetDenied       int
	fallbacks          map[string]int
	itemsEnriched      int
	aiProcessed        int

	// Stages
	stageErrors map[string]string
	artifacts   []string
}

type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

func New(run daily.Run) *RunSummary {
	return &RunSummary{
		runID:       run.ID.String(),
		date:        run.Date,
		startedAt:   run.StartedAt,
		fallbacks:   make(map[string]int),
		stageErrors: make(map[string]string),
	}
}

func (m *RunSummary) RecordSource(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.sourceFailures = append(m.sourceFailures, SourceFailure{Source: name, Error: err.Error()})
		return
	}
	m.sourcesOK++
}

// RecordCollection stores the counts of the collect stage.
func (m *RunSummary) RecordCollection(fetched, relevant, duplicates, kept int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entriesFetched = fetched
	m.entriesRelevant = relevant
	m.duplicates = duplicates
	m.itemsCollected = kept
}

func (m *RunSummary) RecordSelected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsSelected = n
}

func (m *RunSummary) RecordGeneration(_ string, out ai.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case out.Offline:
		m.generationsOffline++
	case out.OK():
		m.generationsOK++
	default:
		m.generationsFailed++
		if errors.Is(out.Err, ratelimit.ErrBudgetExhausted) {
			m.budgetDenied++
		}
	}
}

func (m *RunSummary) RecordFallback(platform string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks[platform]++
}

func (m *RunSummary) RecordEnriched(aiProcessed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsEnriched++
	if aiProcessed {
		m.aiProcessed++
	}
}

func (m *RunSummary) RecordStageError(stage string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageErrors[stage] = err.Error()
}

func (m *RunSummary) RecordArtifact(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, path)
}

// Snapshot is the serialisable view of a RunSummary.
type Snapshot struct {
	RunID              string            `json:"run_id"`
	Date               string            `json:"date"`
	StartedAt          time.Time         `json:"started_at"`
	DurationMS         int64             `json:"duration_ms"`
	SourcesOK          int               `json:"sources_ok"`
	SourcesFailed      int               `json:"sources_failed"`
	SourceFailures     []SourceFailure   `json:"source_failures,omitempty"`
	EntriesFetched     int               `json:"entries_fetched"`
	EntriesRelevant    int               `json:"entries_relevant"`
	Duplicates         int               `json:"duplicates"`
	ItemsCollected     int               `json:"items_collected"`
	ItemsSelected      int               `json:"items_selected"`
	GenerationsOK      int               `json:"generations_ok"`
	GenerationsFailed  int               `json:"generations_failed"`
	GenerationsOffline int               `json:"generations_offline"`
	BudgetDenied       int               `json:"budget_denied"`
	Fallbacks          map[string]int    `json:"fallbacks"`
	ItemsEnriched      int               `json:"items_enriched"`
	AIProcessed        int               `json:"ai_processed"`
	StageErrors        map[string]string `json:"stage_errors,omitempty"`
	Artifacts          []string          `json:"artifacts"`
	Pacers             []ratelimit.Stats `json:"pacers,omitempty"`
	Healthy            bool              `json:"healthy"`
}

// Snapshot copies the current counters. now is the end of the measured span.
func (m *RunSummary) Snapshot(now time.Time) Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fallbacks := make(map[string]int, len(m.fallbacks))
	for k, v := range m.fallbacks {
		fallbacks[k] = v
	}
	stageErrors := make(map[string]string, len(m.stageErrors))
	for k, v := range m.stageErrors {
		stageErrors[k] = v
	}

	return Snapshot{
		RunID:              m.runID,
		Date:               m.date,
		StartedAt:          m.startedAt,
		DurationMS:         now.Sub(m.startedAt).Milliseconds(),
		SourcesOK:          m.sourcesOK,
		SourcesFailed:      len(m.sourceFailures),
		SourceFailures:     append([]SourceFailure(nil), m.sourceFailures...),
		EntriesFetched:     m.entriesFetched,
		EntriesRelevant:    m.entriesRelevant,
		Duplicates:         m.duplicates,
		ItemsCollected:     m.itemsCollected,
		ItemsSelected:      m.itemsSelected,
		GenerationsOK:      m.generationsOK,
		GenerationsFailed:  m.generationsFailed,
		GenerationsOffline: m.generationsOffline,
		BudgetDenied:       m.budgetDenied,
		Fallbacks:          fallbacks,
		ItemsEnriched:      m.itemsEnriched,
		AIProcessed:        m.aiProcessed,
		StageErrors:        stageErrors,
		Artifacts:          append([]string{}, m.artifacts...),
		Healthy:            len(stageErrors) == 0,
	}
}
