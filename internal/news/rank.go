package news

import "sort"

// Rank orders items by QualityScore, highest first. The sort is stable, so
// equal scores keep their incoming order.
func Rank(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].QualityScore > items[j].QualityScore
	})
}

// Select returns at most n items from the front of an already ranked slice.
func Select(items []Item, n int) []Item {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
