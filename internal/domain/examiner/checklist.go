package examiner

import (
	"strings"

	"github.com/phrazzld/viva-api/internal/domain"
)

// Coverage partitions a checklist into the items an answer hit and missed.
type Coverage struct {
	Phase  domain.Phase           `json:"phase"`
	Hits   []domain.ChecklistItem `json:"hits"`
	Misses []domain.ChecklistItem `json:"misses"`
}

// Total is the number of checklist items considered.
func (c Coverage) Total() int {
	return len(c.Hits) + len(c.Misses)
}

// Ratio is hits over total, or 0 for an empty checklist.
func (c Coverage) Ratio() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(len(c.Hits)) / float64(total)
}

// HitLabels returns the labels of covered items in checklist order.
func (c Coverage) HitLabels() []string {
	return labels(c.Hits)
}

// MissLabels returns the labels of missed items in checklist order.
func (c Coverage) MissLabels() []string {
	return labels(c.Misses)
}

// FirstMiss returns the first missed item, if any.
func (c Coverage) FirstMiss() (domain.ChecklistItem, bool) {
	if len(c.Misses) == 0 {
		return domain.ChecklistItem{}, false
	}
	return c.Misses[0], true
}

func labels(items []domain.ChecklistItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

// ContainsAny reports whether text contains any non-empty keyword, ignoring
// case and accents.
func ContainsAny(text string, keywords []string) bool {
	return containsAnyNormalized(Normalize(text), keywords)
}

func containsAnyNormalized(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		nk := Normalize(kw)
		if nk == "" {
			continue
		}
		if strings.Contains(normalized, nk) {
			return true
		}
	}
	return false
}

// Match checks text against a checklist for phase p.
func Match(p domain.Phase, text string, items []domain.ChecklistItem) Coverage {
	return matchNormalized(p, Normalize(text), items)
}

func matchNormalized(p domain.Phase, normalized string, items []domain.ChecklistItem) Coverage {
	cov := Coverage{Phase: p}
	for _, item := range items {
		if containsAnyNormalized(normalized, item.Keywords) {
			cov.Hits = append(cov.Hits, item)
		} else {
			cov.Misses = append(cov.Misses, item)
		}
	}
	return cov
}
