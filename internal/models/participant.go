package models

// Participant represents a validated roster entry for the current race
type Participant struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Club         string `json:"club,omitempty"`
	RaceCategory string `json:"race_category,omitempty"` // distance or heat
	AgeCategory  string `json:"age_category"`
}

// Bracket is one row of the age category table.
// Min and Max are inclusive; a nil Max leaves the bracket open-ended.
type Bracket struct {
	Label string `yaml:"label" json:"label"`
	Min   int    `yaml:"min" json:"min"`
	Max   *int   `yaml:"max" json:"max,omitempty"`
}

// Contains checks if age falls inside the bracket
func (b Bracket) Contains(age int) bool {
	if age < b.Min {
		return false
	}
	return b.Max == nil || age <= *b.Max
}

// SelectCategoryRequest selects the race category (heat/distance) eligible for finish recording
type SelectCategoryRequest struct {
	RaceCategory string `json:"race_category"`
}

// RosterResponse lists the participants of the active catalog
type RosterResponse struct {
	RaceCategory string        `json:"race_category,omitempty"`
	Participants []Participant `json:"participants"`
	Total        int           `json:"total"`
}
