package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/news"
	"github.com/deusflow/aidaily/internal/storage"
)

const (
	// WeekDays is how many dated runs a weekly report covers, ending with the
	// run's own date.
	WeekDays = 7

	weeklyTop          = 5
	weeklySummaryRunes = 150
)

// ErrEmptyWeek means none of the covered days has a processed artifact.
var ErrEmptyWeek = errors.New("no processed items in the covered week")

var weeklyHotWords = []string{"突破", "重大", "首次", "革命性", "重磅"}

// EnrichedLoader reads the processed artifact of one dated run (storage.FileStore).
type EnrichedLoader interface {
	LoadEnriched(run daily.Run) ([]news.EnrichedItem, error)
}

// Count is one row of a distribution, in first-seen or configured order.
type Count struct {
	Label string
	N     int
}

// Week is the aggregated input of a weekly report.
type Week struct {
	Number     int
	Start      string
	End        string
	Items      []news.EnrichedItem // newest day first, each day in its stored order
	Days       []string            // dates that had data
	Missing    []string            // dates without a usable artifact
	Unreadable []error             // load failures other than a missing file
	Sources    []Count
	Categories []Count
}

// CollectWeek loads the processed items of run's date and the six days before
// it. Days without an artifact, or with an unreadable one, are listed in
// Missing. Categories are recomputed from titles with taxonomy, so every label
// appears even with a zero count.
func CollectWeek(run daily.Run, loader EnrichedLoader, taxonomy news.Taxonomy) (Week, error) {
	w := Week{
		Number: run.Week(),
		Start:  run.DaysBack(WeekDays - 1).Date,
		End:    run.Date,
	}

	for i := 0; i < WeekDays; i++ {
		day := run.DaysBack(i)
		items, err := loader.LoadEnriched(day)
		if err != nil {
			if !errors.Is(err, storage.ErrMissingInput) {
				w.Unreadable = append(w.Unreadable, err)
			}
			w.Missing = append(w.Missing, day.Date)
			continue
		}
		w.Days = append(w.Days, day.Date)
		w.Items = append(w.Items, items...)
	}
	if len(w.Items) == 0 {
		return w, errors.Join(append([]error{ErrEmptyWeek}, w.Unreadable...)...)
	}

	index := make(map[string]int)
	for _, it := range w.Items {
		src := orDefault(it.Source, "未知")
		if i, ok := index[src]; ok {
			w.Sources[i].N++
			continue
		}
		index[src] = len(w.Sources)
		w.Sources = append(w.Sources, Count{Label: src, N: 1})
	}

	counts := make(map[string]int)
	for _, it := range w.Items {
		counts[taxonomy.Categorize(it.Title)]++
	}
	for _, label := range taxonomy.Labels() {
		w.Categories = append(w.Categories, Count{Label: label, N: counts[label]})
	}
	return w, nil
}

// Hottest returns the top items of the week by headline weight: +3 for each
// hot word in the title plus one point per ten title runes, at most five.
// Ties keep load order.
func (w Week) Hottest(n int) []news.EnrichedItem {
	items := append([]news.EnrichedItem(nil), w.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return headlineWeight(items[i].Title) > headlineWeight(items[j].Title)
	})
	return head(items, n)
}

func headlineWeight(title string) float64 {
	score := 0.0
	for _, word := range weeklyHotWords {
		if strings.Contains(title, word) {
			score += 3
		}
	}
	return score + min(float64(utf8.RuneCountInString(title))/10, 5)
}

// busiest returns the first entry with the highest count.
func busiest(counts []Count) string {
	best := Count{N: -1}
	for _, c := range counts {
		if c.N > best.N {
			best = c
		}
	}
	return best.Label
}

// WeeklyMarkdown renders the weekly report.
func WeeklyMarkdown(w Week) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 📊 AI与机器人周报 第%d周\n\n", w.Number)
	fmt.Fprintf(&b, "**统计周期**: %s 至 %s\n", w.Start, w.End)
	fmt.Fprintf(&b, "**资讯总数**: %d 条\n", len(w.Items))
	if len(w.Missing) > 0 {
		fmt.Fprintf(&b, "**缺少数据的日期**: %s\n", strings.Join(w.Missing, ", "))
	}

	b.WriteString("\n## 📈 本周数据概览\n\n### 资讯来源分布\n")
	for _, c := range w.Sources {
		fmt.Fprintf(&b, "- **%s**: %d 条\n", c.Label, c.N)
	}

	b.WriteString("\n### 内容分类统计\n")
	for _, c := range w.Categories {
		fmt.Fprintf(&b, "- **%s**: %d 条\n", c.Label, c.N)
	}

	b.WriteString("\n### 趋势分析\n")
	fmt.Fprintf(&b, "1. 本周最活跃来源: %s\n", busiest(w.Sources))
	fmt.Fprintf(&b, "2. 最热门领域: %s\n", busiest(w.Categories))
	fmt.Fprintf(&b, "3. 平均每天资讯数: %d 条\n\n", len(w.Items)/WeekDays)

	fmt.Fprintf(&b, "## 🏆 本周热门资讯（前%d）\n\n", weeklyTop)
	for i, it := range w.Hottest(weeklyTop) {
		summary := it.SimpleSummary
		if summary == "" {
			summary = orDefault(it.Summary, "无摘要")
		}

		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, orDefault(it.Title, "无标题"))
		fmt.Fprintf(&b, "**来源**: %s\n", orDefault(it.Source, "未知"))
		fmt.Fprintf(&b, "**发布时间**: %s\n\n", orDefault(it.Published, "未知"))
		fmt.Fprintf(&b, "**摘要**: %s...\n\n", string(head([]rune(summary), weeklySummaryRunes)))
		fmt.Fprintf(&b, "[查看原文](%s)\n\n---\n", orDefault(it.Link, "#"))
	}
	return b.String()
}

// Weekly aggregates the week ending at run's date and writes the report to
// run.WeeklyPath. It returns ErrEmptyWeek, and writes nothing, when no day of
// the week has processed items.
func (w *Writer) Weekly(run daily.Run, loader EnrichedLoader, taxonomy news.Taxonomy) (string, error) {
	week, err := CollectWeek(run, loader, taxonomy)
	if err != nil {
		return "", err
	}
	for _, e := range week.Unreadable {
		w.log.Warn("skipping unreadable day in weekly report", "error", e)
	}

	path := run.WeeklyPath()
	if err := w.store.WriteText(path, WeeklyMarkdown(week)); err != nil {
		return "", err
	}
	w.log.Info("weekly report written", "week", week.Number, "items", len(week.Items), "days", len(week.Days), "missing", len(week.Missing))
	return path, nil
}
