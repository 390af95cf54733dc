package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedup_FirstSeenWins(t *testing.T) {
	items := []Item{
		{Title: "AI芯片新突破", Summary: "first"},
		{Title: "机器人上岗", Summary: "only"},
		{Title: "AI芯片新突破", Summary: "second"},
	}

	kept, dropped := Dedup(items)

	assert.Equal(t, 1, dropped)
	assert.Len(t, kept, 2)
	assert.Equal(t, "first", kept[0].Summary)
	assert.Equal(t, "机器人上岗", kept[1].Title)
}

func TestDedup_ExactMatchOnly(t *testing.T) {
	items := []Item{
		{Title: "AI News"},
		{Title: "ai news"},
		{Title: "AI News "},
	}

	kept, dropped := Dedup(items)
	assert.Zero(t, dropped)
	assert.Len(t, kept, 3)
}

func TestDedup_UniqueTitles(t *testing.T) {
	items := []Item{{Title: "a"}, {Title: "b"}, {Title: "a"}, {Title: "c"}, {Title: "b"}}

	kept, _ := Dedup(items)

	seen := map[string]bool{}
	for _, it := range kept {
		assert.False(t, seen[it.Title], "duplicate %q", it.Title)
		seen[it.Title] = true
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles(kept))
}

func titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}
