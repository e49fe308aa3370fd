package models

// Standing is one ranked row of a results view
type Standing struct {
	Rank int `json:"rank"`
	Participant
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ResultGroup is an independently ranked view over a subset of finishers
type ResultGroup struct {
	Key         string     `json:"key"`
	AgeCategory string     `json:"age_category,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Standings   []Standing `json:"standings"`
}

// IntegrityFault reports a finish record that could not be joined with the roster
type IntegrityFault struct {
	ParticipantID int    `json:"participant_id"`
	Sequence      uint64 `json:"sequence"`
	Reason        string `json:"reason"`
}

// Snapshot is an immutable, point-in-time projection of the race results
type Snapshot struct {
	RaceID        string           `json:"race_id,omitempty"`
	State         RaceState        `json:"state"`
	Version       uint64           `json:"version"`
	RaceCategory  string           `json:"race_category,omitempty"`
	Overall       []Standing       `json:"overall"`
	ByAgeCategory []ResultGroup    `json:"by_age_category"`
	ByGender      []ResultGroup    `json:"by_gender"`
	ByAgeGender   []ResultGroup    `json:"by_age_gender"`
	Faults        []IntegrityFault `json:"faults,omitempty"`
}

// AgeCategory returns the view for an age category label, or nil if nobody in it finished
func (s *Snapshot) AgeCategory(label string) *ResultGroup {
	return findGroup(s.ByAgeCategory, label)
}

// Gender returns the view for a gender label
func (s *Snapshot) Gender(label string) *ResultGroup {
	return findGroup(s.ByGender, label)
}

// AgeGender returns the cross view for an age category and gender
func (s *Snapshot) AgeGender(ageCategory, gender string) *ResultGroup {
	for i := range s.ByAgeGender {
		if s.ByAgeGender[i].AgeCategory == ageCategory && s.ByAgeGender[i].Gender == gender {
			return &s.ByAgeGender[i]
		}
	}
	return nil
}

// AgeGenderKey builds the display key of a cross view. Lookups match on the labels.
func AgeGenderKey(ageCategory, gender string) string {
	return ageCategory + " / " + gender
}

func findGroup(groups []ResultGroup, key string) *ResultGroup {
	for i := range groups {
		if groups[i].Key == key {
			return &groups[i]
		}
	}
	return nil
}
