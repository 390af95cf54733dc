package news

import "strings"

// DefaultKeywords is the domain vocabulary a title must touch to be kept.
var DefaultKeywords = []string{
	"AI", "人工智能", "机器人", "机器学习", "robotics", "robot",
	"LLM", "GPT", "大模型", "自动驾驶", "具身智能", "machine learning",
}

// RelevanceFilter keeps titles that contain at least one keyword,
// case-insensitively. Plain substring match: "AI" also hits "Taipei".
type RelevanceFilter struct {
	keywords []string
}

func NewRelevanceFilter(keywords []string) RelevanceFilter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		lowered = append(lowered, k)
	}
	return RelevanceFilter{keywords: lowered}
}

func (f RelevanceFilter) Keep(title string) bool {
	if title == "" {
		return false
	}
	keywords := f.keywords
	if keywords == nil {
		keywords = NewRelevanceFilter(nil).keywords
	}
	return containsAny(strings.ToLower(title), keywords)
}

// containsAny expects text and keywords already lower-cased.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
