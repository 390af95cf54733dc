package metrics

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/aidaily/internal/ai"
	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/ratelimit"
)

func TestRunSummary_Snapshot(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	run := daily.New(start, time.UTC, "out", "docs")
	m := New(run)

	m.RecordSource("good", nil)
	m.RecordSource("bad", errors.New("timeout"))
	m.RecordCollection(12, 7, 2, 5)
	m.RecordSelected(5)
	m.RecordGeneration("xiaohongshu", ai.Outcome{Text: "ok"})
	m.RecordGeneration("douyin", ai.Outcome{Err: errors.New("500")})
	m.RecordGeneration("zhihu", ai.Outcome{Err: fmt.Errorf("ai: %w", ratelimit.ErrBudgetExhausted)})
	m.RecordFallback("douyin")
	m.RecordFallback("zhihu")
	m.RecordEnriched(true)
	m.RecordArtifact("out/daily/news_2025-06-02.json")

	s := m.Snapshot(start.Add(1500 * time.Millisecond))

	assert.Equal(t, run.ID.String(), s.RunID)
	assert.Equal(t, "2025-06-02", s.Date)
	assert.Equal(t, int64(1500), s.DurationMS)
	assert.Equal(t, 1, s.SourcesOK)
	assert.Equal(t, 1, s.SourcesFailed)
	assert.Equal(t, []SourceFailure{{Source: "bad", Error: "timeout"}}, s.SourceFailures)
	assert.Equal(t, 12, s.EntriesFetched)
	assert.Equal(t, 2, s.Duplicates)
	assert.Equal(t, 5, s.ItemsSelected)
	assert.Equal(t, 1, s.GenerationsOK)
	assert.Equal(t, 2, s.GenerationsFailed)
	assert.Equal(t, 1, s.BudgetDenied)
	assert.Equal(t, map[string]int{"douyin": 1, "zhihu": 1}, s.Fallbacks)
	assert.Equal(t, 1, s.AIProcessed)
	assert.True(t, s.Healthy)

	m.RecordStageError("report", errors.New("missing input"))
	assert.False(t, m.Snapshot(start).Healthy)
}

func TestRunSummary_Offline(t *testing.T) {
	m := New(daily.New(time.Now(), time.UTC, "out", "docs"))

	m.RecordGeneration("xiaohongshu", ai.Outcome{Text: ai.Placeholder, Offline: true})

	s := m.Snapshot(time.Now())
	assert.Equal(t, 1, s.GenerationsOffline)
	assert.Zero(t, s.GenerationsOK)
}

func TestRunSummary_Concurrent(t *testing.T) {
	m := New(daily.New(time.Now(), time.UTC, "out", "docs"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordFallback("douyin")
			m.RecordEnriched(false)
		}()
	}
	wg.Wait()

	s := m.Snapshot(time.Now())
	assert.Equal(t, 50, s.Fallbacks["douyin"])
	assert.Equal(t, 50, s.ItemsEnriched)
}
