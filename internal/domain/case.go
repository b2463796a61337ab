package domain

import (
	"fmt"
	"strings"
)

// ChecklistItem is one expected point in a candidate's answer. An answer covers
// the item when it contains any of the keywords.
type ChecklistItem struct {
	Label    string   `json:"label"              yaml:"label"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords"`
	// Prompt is the follow-up question asked when the item is missed.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// HasKeywords reports whether the item has at least one non-blank keyword.
func (i ChecklistItem) HasKeywords() bool {
	for _, k := range i.Keywords {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// PhaseScript holds the examiner's material for one phase of a case.
type PhaseScript struct {
	Question   string          `json:"question"             yaml:"question"`
	Escalation string          `json:"escalation,omitempty"  yaml:"escalation,omitempty"`
	Checklist  []ChecklistItem `json:"checklist,omitempty"   yaml:"checklist"`
}

// Case is a clinical scenario used for an oral exam.
type Case struct {
	ID         string                `json:"id"                  yaml:"id"`
	Title      string                `json:"title"               yaml:"title"`
	Specialty  string                `json:"specialty"           yaml:"specialty"`
	Difficulty string                `json:"difficulty"          yaml:"difficulty"`
	Vignette   string                `json:"vignette"            yaml:"vignette"`
	Closing    string                `json:"closing,omitempty"   yaml:"closing,omitempty"`
	Phases     map[Phase]PhaseScript `json:"phases"              yaml:"phases"`
	RedFlags   []ChecklistItem       `json:"red_flags,omitempty" yaml:"red_flags,omitempty"`
}

// Script returns the script for phase p. Missing phases yield a zero script.
func (c *Case) Script(p Phase) PhaseScript {
	if c == nil || c.Phases == nil {
		return PhaseScript{}
	}
	return c.Phases[p]
}

// Checklist returns the checklist for phase p.
func (c *Case) Checklist(p Phase) []ChecklistItem {
	return c.Script(p).Checklist
}

// Validate checks that the case can drive a full exam.
func (c *Case) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCase)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: case %s: title is required", ErrInvalidCase, c.ID)
	}
	if strings.TrimSpace(c.Vignette) == "" {
		return fmt.Errorf("%w: case %s: vignette is required", ErrInvalidCase, c.ID)
	}
	switch c.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return fmt.Errorf("%w: case %s: unknown difficulty %q", ErrInvalidCase, c.ID, c.Difficulty)
	}

	for p := range c.Phases {
		if !p.Valid() {
			return fmt.Errorf("%w: case %s: unknown phase %q", ErrInvalidCase, c.ID, p)
		}
	}

	items := 0
	for _, p := range Phases {
		script := c.Script(p)
		if strings.TrimSpace(script.Question) == "" {
			return fmt.Errorf("%w: case %s: phase %s has no question", ErrInvalidCase, c.ID, p)
		}
		for _, item := range script.Checklist {
			if strings.TrimSpace(item.Label) == "" {
				return fmt.Errorf("%w: case %s: phase %s has an unlabeled item", ErrInvalidCase, c.ID, p)
			}
			if !item.HasKeywords() {
				return fmt.Errorf("%w: case %s: item %q has no keywords", ErrInvalidCase, c.ID, item.Label)
			}
			items++
		}
	}
	if items == 0 {
		return fmt.Errorf("%w: case %s: no checklist items", ErrInvalidCase, c.ID)
	}

	for _, flag := range c.RedFlags {
		if strings.TrimSpace(flag.Label) == "" || !flag.HasKeywords() {
			return fmt.Errorf("%w: case %s: red flags need a label and keywords", ErrInvalidCase, c.ID)
		}
	}

	return nil
}

// CaseSummary is the public view of a case. It never exposes checklist keywords.
type CaseSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Specialty  string `json:"specialty"`
	Difficulty string `json:"difficulty"`
	Vignette   string `json:"vignette"`
}

// Summary returns the public view of c.
func (c *Case) Summary() CaseSummary {
	return CaseSummary{
		ID:         c.ID,
		Title:      c.Title,
		Specialty:  c.Specialty,
		Difficulty: c.Difficulty,
		Vignette:   c.Vignette,
	}
}
