package news

import (
	"strings"

	"github.com/deusflow/aidaily/internal/rss"
)

// DefaultCategory is assigned when no group matches.
const DefaultCategory = "AI综合"

// CategoryGroup is one entry of the priority list.
type CategoryGroup struct {
	Label    string
	Keywords []string
}

// DefaultCategoryGroups is checked top to bottom; the first hit wins.
var DefaultCategoryGroups = []CategoryGroup{
	{Label: "AI大模型", Keywords: []string{"gpt", "大模型", "llm", "language model"}},
	{Label: "机器人", Keywords: []string{"机器人", "robot", "人形"}},
	{Label: "自动驾驶", Keywords: []string{"自动驾驶", "无人驾驶", "autonomous driving"}},
	{Label: "芯片硬件", Keywords: []string{"芯片", "gpu", "硬件", "chip"}},
}

// Taxonomy assigns exactly one label per title.
type Taxonomy struct {
	groups       []CategoryGroup
	defaultLabel string
}

// NewTaxonomy keeps groups in the given order. Empty groups fall back to the
// defaults, an empty default label to DefaultCategory.
func NewTaxonomy(groups []CategoryGroup, defaultLabel string) Taxonomy {
	if len(groups) == 0 {
		groups = DefaultCategoryGroups
	}
	if defaultLabel == "" {
		defaultLabel = DefaultCategory
	}

	normalized := make([]CategoryGroup, 0, len(groups))
	for _, g := range groups {
		if strings.TrimSpace(g.Label) == "" {
			continue
		}
		kws := make([]string, 0, len(g.Keywords))
		for _, k := range g.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		normalized = append(normalized, CategoryGroup{Label: g.Label, Keywords: kws})
	}
	return Taxonomy{groups: normalized, defaultLabel: defaultLabel}
}

// TaxonomyFromRules converts the YAML category rules, preserving their order.
func TaxonomyFromRules(rules []rss.CategoryRule, defaultLabel string) Taxonomy {
	groups := make([]CategoryGroup, 0, len(rules))
	for _, r := range rules {
		groups = append(groups, CategoryGroup{Label: r.Label, Keywords: r.Keywords})
	}
	return NewTaxonomy(groups, defaultLabel)
}

func (t Taxonomy) Categorize(title string) string {
	if t.groups == nil {
		t = NewTaxonomy(nil, t.defaultLabel)
	}
	lower := strings.ToLower(title)
	for _, g := range t.groups {
		if containsAny(lower, g.Keywords) {
			return g.Label
		}
	}
	return t.defaultLabel
}

// Labels lists every label Categorize can return, default last.
func (t Taxonomy) Labels() []string {
	if t.groups == nil {
		t = NewTaxonomy(nil, t.defaultLabel)
	}
	labels := make([]string, 0, len(t.groups)+1)
	for _, g := range t.groups {
		labels = append(labels, g.Label)
	}
	return append(labels, t.defaultLabel)
}
