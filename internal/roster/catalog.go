package roster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/terra-clan/swim-timer/internal/models"
)

// UnspecifiedGender labels participants whose roster row has no gender
const UnspecifiedGender = "Unspecified"

// Row is one pre-parsed roster line. Line is the 1-based source line for error reports.
type Row struct {
	Line         int
	ID           string
	Name         string
	Age          string
	Gender       string
	Club         string
	RaceCategory string
	Attending    string
}

// RowError lists every problem found on a single roster row
type RowError struct {
	Line     int      `json:"line"`
	ID       string   `json:"id,omitempty"`
	Problems []string `json:"problems"`
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d (id %q): %s", e.Line, e.ID, strings.Join(e.Problems, ", "))
}

// ValidationError reports all offending roster rows at once
type ValidationError struct {
	Rows []RowError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		parts[i] = r.String()
	}
	return fmt.Sprintf("roster validation failed: %d invalid rows: %s", len(e.Rows), strings.Join(parts, "; "))
}

// Catalog is a read-only, validated set of participants
type Catalog struct {
	participants []models.Participant // sorted by ID
	index        map[int]int
	category     string
	brackets     *BracketTable
}

// NewCatalog validates rows and derives age categories with table.
// Rows flagged as not attending are dropped before validation.
func NewCatalog(rows []Row, table *BracketTable) (*Catalog, error) {
	if table == nil {
		table = DefaultBrackets()
	}

	var (
		invalid      []RowError
		participants []models.Participant
		firstSeen    = make(map[int]int)
	)

	for _, row := range rows {
		if !IsAttending(row.Attending) {
			continue
		}

		var problems []string

		idText := strings.TrimSpace(row.ID)
		id, err := strconv.Atoi(idText)
		switch {
		case idText == "":
			problems = append(problems, "missing id")
		case err != nil:
			problems = append(problems, "id is not an integer")
		case id <= 0:
			problems = append(problems, "id must be positive")
		default:
			if line, dup := firstSeen[id]; dup {
				problems = append(problems, fmt.Sprintf("duplicate id (first seen on line %d)", line))
			} else {
				firstSeen[id] = row.Line
			}
		}

		name := strings.TrimSpace(row.Name)
		if name == "" {
			problems = append(problems, "empty name")
		}

		ageText := strings.TrimSpace(row.Age)
		age, err := strconv.Atoi(ageText)
		switch {
		case ageText == "":
			problems = append(problems, "missing age")
		case err != nil:
			problems = append(problems, "age is not an integer")
		case age < 0:
			problems = append(problems, "negative age")
		}

		if len(problems) > 0 {
			invalid = append(invalid, RowError{Line: row.Line, ID: idText, Problems: problems})
			continue
		}

		gender := strings.TrimSpace(row.Gender)
		if gender == "" {
			gender = UnspecifiedGender
		}

		participants = append(participants, models.Participant{
			ID:           id,
			Name:         name,
			Age:          age,
			Gender:       gender,
			Club:         strings.TrimSpace(row.Club),
			RaceCategory: strings.TrimSpace(row.RaceCategory),
			AgeCategory:  table.Categorize(age),
		})
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Rows: invalid}
	}

	return newCatalog(participants, "", table), nil
}

func newCatalog(participants []models.Participant, category string, table *BracketTable) *Catalog {
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ID < participants[j].ID
	})

	index := make(map[int]int, len(participants))
	for i, p := range participants {
		index[p.ID] = i
	}

	return &Catalog{
		participants: participants,
		index:        index,
		category:     category,
		brackets:     table,
	}
}

// IsAttending interprets an attendance flag. An empty flag means attending.
func IsAttending(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "no", "n", "false", "0", "absent":
		return false
	}
	return true
}

// Get returns a participant by ID
func (c *Catalog) Get(id int) (models.Participant, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Participant{}, false
	}
	return c.participants[i], true
}

// Contains checks if id belongs to the catalog
func (c *Catalog) Contains(id int) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of participants
func (c *Catalog) Len() int {
	return len(c.participants)
}

// Participants returns a copy of all participants ordered by ID
func (c *Catalog) Participants() []models.Participant {
	return append([]models.Participant(nil), c.participants...)
}

// Category returns the race category the catalog is scoped to (empty when unfiltered)
func (c *Catalog) Category() string {
	return c.category
}

// Brackets returns the age category table used to build the catalog
func (c *Catalog) Brackets() *BracketTable {
	return c.brackets
}

// RaceCategories lists the distinct, non-empty race categories in sorted order
func (c *Catalog) RaceCategories() []string {
	seen := make(map[string]bool)
	var result []string
	for _, p := range c.participants {
		if p.RaceCategory == "" || seen[p.RaceCategory] {
			continue
		}
		seen[p.RaceCategory] = true
		result = append(result, p.RaceCategory)
	}
	sort.Strings(result)
	return result
}

// Filter returns a catalog scoped to one race category. An empty category selects everyone.
func (c *Catalog) Filter(raceCategory string) *Catalog {
	raceCategory = strings.TrimSpace(raceCategory)
	if raceCategory == "" {
		return newCatalog(c.Participants(), "", c.brackets)
	}

	var selected []models.Participant
	for _, p := range c.participants {
		if strings.EqualFold(p.RaceCategory, raceCategory) {
			selected = append(selected, p)
		}
	}
	return newCatalog(selected, raceCategory, c.brackets)
}
