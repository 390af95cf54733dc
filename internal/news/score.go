package news

import (
	"regexp"
	"unicode/utf8"
)

const MaxQualityScore = 5

// DefaultAuthoritativeSources earn the source bonus.
var DefaultAuthoritativeSources = []string{
	"机器之心", "量子位", "36氪", "新智元", "雷锋网",
	"MIT Technology Review", "IEEE Spectrum", "The Verge", "TechCrunch", "Wired",
}

var digitPattern = regexp.MustCompile(`\d+`)

// Scorer rates items 0..5 by title/summary shape, numbers and source.
type Scorer struct {
	authoritative map[string]struct{}
}

func NewScorer(authoritative []string) Scorer {
	if len(authoritative) == 0 {
		authoritative = DefaultAuthoritativeSources
	}
	set := make(map[string]struct{}, len(authoritative))
	for _, s := range authoritative {
		set[s] = struct{}{}
	}
	return Scorer{authoritative: set}
}

// Score is pure: the same item always gets the same score.
func (s Scorer) Score(it Item) int {
	if s.authoritative == nil {
		s = NewScorer(nil)
	}

	score := 0

	switch n := utf8.RuneCountInString(it.Title); {
	case n >= 20 && n <= 50:
		score += 2
	case (n >= 10 && n < 20) || (n > 50 && n <= 80):
		score++
	}

	if n := utf8.RuneCountInString(it.Summary); n >= 100 && n <= 300 {
		score += 2
	}

	if digitPattern.MatchString(it.Title + it.Summary) {
		score++
	}

	if _, ok := s.authoritative[it.Source]; ok {
		score += 2
	}

	return min(score, MaxQualityScore)
}
