package news

// Dedup keeps the first item for each distinct title and reports how many were
// dropped. Titles are compared exactly: "AI news" and "ai news " are different.
func Dedup(items []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(items))
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.Title]; dup {
			continue
		}
		seen[it.Title] = struct{}{}
		kept = append(kept, it)
	}
	return kept, len(items) - len(kept)
}
