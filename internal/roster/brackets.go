package roster

import (
	"fmt"

	"github.com/terra-clan/swim-timer/internal/models"
)

// DefaultFallback is the catch-all label for ages no bracket captures
const DefaultFallback = "Open"

// BracketTable derives age categories from an ordered list of brackets.
// Brackets are evaluated top to bottom and the first match wins.
type BracketTable struct {
	brackets []models.Bracket
	fallback string
	order    map[string]int
}

// NewBracketTable validates brackets and builds a table
func NewBracketTable(brackets []models.Bracket, fallback string) (*BracketTable, error) {
	if fallback == "" {
		fallback = DefaultFallback
	}

	seen := make(map[string]bool, len(brackets))
	for i, b := range brackets {
		if b.Label == "" {
			return nil, fmt.Errorf("bracket %d: label is required", i+1)
		}
		if b.Min < 0 {
			return nil, fmt.Errorf("bracket %q: min must not be negative", b.Label)
		}
		if b.Max != nil && *b.Max < b.Min {
			return nil, fmt.Errorf("bracket %q: max %d is below min %d", b.Label, *b.Max, b.Min)
		}
		if seen[b.Label] {
			return nil, fmt.Errorf("bracket %q: duplicate label", b.Label)
		}
		seen[b.Label] = true
	}

	t := &BracketTable{
		brackets: append([]models.Bracket(nil), brackets...),
		fallback: fallback,
		order:    make(map[string]int, len(brackets)+1),
	}
	for i, b := range t.brackets {
		t.order[b.Label] = i
	}
	if _, ok := t.order[fallback]; !ok {
		t.order[fallback] = len(t.brackets)
	}
	return t, nil
}

// DefaultBrackets returns the standard open-water age bands
func DefaultBrackets() *BracketTable {
	t, err := NewBracketTable([]models.Bracket{
		{Label: "Under 14", Min: 0, Max: intPtr(13)},
		{Label: "14-19", Min: 14, Max: intPtr(19)},
		{Label: "20-29", Min: 20, Max: intPtr(29)},
		{Label: "30-39", Min: 30, Max: intPtr(39)},
		{Label: "40-49", Min: 40, Max: intPtr(49)},
		{Label: "50-59", Min: 50, Max: intPtr(59)},
		{Label: "60-69", Min: 60, Max: intPtr(69)},
		{Label: "70+", Min: 70},
	}, DefaultFallback)
	if err != nil {
		panic(err)
	}
	return t
}

// Categorize returns the label of the first bracket containing age, or the fallback
func (t *BracketTable) Categorize(age int) string {
	for _, b := range t.brackets {
		if b.Contains(age) {
			return b.Label
		}
	}
	return t.fallback
}

// Brackets returns a copy of the ordered brackets
func (t *BracketTable) Brackets() []models.Bracket {
	return append([]models.Bracket(nil), t.brackets...)
}

// Fallback returns the catch-all label
func (t *BracketTable) Fallback() string {
	return t.fallback
}

// Order returns the display position of a category label.
// Unknown labels sort after every known one.
func (t *BracketTable) Order(label string) int {
	if i, ok := t.order[label]; ok {
		return i
	}
	return len(t.order)
}

func intPtr(v int) *int {
	return &v
}
