package news

import (
	"regexp"
	"strings"
)

// MaxSummaryRunes is the default summary bound.
const MaxSummaryRunes = 500

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// entityReplacer decodes the named entities feeds commonly leave in summaries.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&hellip;", "…",
	"&mdash;", "—",
	"&ndash;", "–",
)

// Clean strips markup and entities from text, collapses whitespace and bounds
// the result to MaxSummaryRunes. Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	return CleanN(text, MaxSummaryRunes)
}

// CleanN is Clean with an explicit rune bound (<= 0 means MaxSummaryRunes).
func CleanN(text string, maxRunes int) string {
	if text == "" {
		return ""
	}
	if maxRunes <= 0 {
		maxRunes = MaxSummaryRunes
	}

	// Decoding can surface new tags ("&lt;b&gt;") and stripping can join new
	// entities ("&am<x>p;"), so run both until nothing changes.
	for {
		next := tagPattern.ReplaceAllString(entityReplacer.Replace(text), "")
		if next == text {
			break
		}
		text = next
	}

	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(truncateRunes(text, maxRunes))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
