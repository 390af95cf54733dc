// Package daily holds the per-invocation run context: which calendar date is
// being produced and where its artifacts live. One Run is built per process
// and handed to every stage; nothing here is global.
package daily

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// Run identifies a single pipeline execution for one calendar date.
type Run struct {
	ID        uuid.UUID
	Date      string
	StartedAt time.Time
	OutputDir string
	DocsDir   string
}

// New builds a Run for the calendar day of now in loc.
func New(now time.Time, loc *time.Location, outputDir, docsDir string) Run {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	return Run{
		ID:        uuid.New(),
		Date:      now.Format(DateLayout),
		StartedAt: now,
		OutputDir: outputDir,
		DocsDir:   docsDir,
	}
}

func (r Run) DailyDir() string  { return filepath.Join(r.OutputDir, "daily") }
func (r Run) ExportDir() string { return filepath.Join(r.OutputDir, "export") }

// RawPath is the ingested-items artifact.
func (r Run) RawPath() string {
	return filepath.Join(r.DailyDir(), fmt.Sprintf("news_%s.json", r.Date))
}

// ProcessedPath is the enriched-items artifact.
func (r Run) ProcessedPath() string {
	return filepath.Join(r.DailyDir(), fmt.Sprintf("processed_%s.json", r.Date))
}

func (r Run) SummaryPath() string {
	return filepath.Join(r.DailyDir(), fmt.Sprintf("summary_%s.json", r.Date))
}

func (r Run) ReportPath() string {
	return filepath.Join(r.DailyDir(), fmt.Sprintf("report_%s.md", r.Date))
}

// ExportPath is the per-platform export document, e.g. export/douyin_2025-12-18.txt.
func (r Run) ExportPath(platform string) string {
	return filepath.Join(r.ExportDir(), fmt.Sprintf("%s_%s.txt", platform, r.Date))
}

func (r Run) WorkbookPath() string {
	return filepath.Join(r.ExportDir(), fmt.Sprintf("digest_%s.xlsx", r.Date))
}

// DocsPath is the published copy of the report with the given extension ("md", "html").
func (r Run) DocsPath(ext string) string {
	return filepath.Join(r.DocsDir, "daily", fmt.Sprintf("%s.%s", r.Date, ext))
}

// DaysBack is the run for the calendar date n days before r.Date. Only the
// date, and with it every dated path, changes.
func (r Run) DaysBack(n int) Run {
	day, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		day = r.StartedAt
	}
	r.Date = day.AddDate(0, 0, -n).Format(DateLayout)
	return r
}

// Week is the ISO week number of r.Date.
func (r Run) Week() int {
	day, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		day = r.StartedAt
	}
	_, week := day.ISOWeek()
	return week
}

func (r Run) WeeklyDir() string { return filepath.Join(r.OutputDir, "weekly") }

// WeeklyPath is the weekly report for the ISO week of r.Date.
func (r Run) WeeklyPath() string {
	return filepath.Join(r.WeeklyDir(), fmt.Sprintf("report_week%d.md", r.Week()))
}
