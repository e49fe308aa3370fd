package models

// ResultRow is the flattened, storable form of one overall standing
type ResultRow struct {
	RaceID          string  `json:"race_id"`
	RaceCategory    string  `json:"race_category,omitempty"`
	Rank            int     `json:"rank"`
	AgeCategoryRank int     `json:"age_category_rank"`
	GenderRank      int     `json:"gender_rank"`
	ParticipantID   int     `json:"participant_id"`
	Name            string  `json:"name"`
	Age             int     `json:"age"`
	AgeCategory     string  `json:"age_category"`
	Gender          string  `json:"gender"`
	Club            string  `json:"club,omitempty"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
}

// ResultRows flattens the overall view, attaching each finisher's group ranks
func (s *Snapshot) ResultRows() []ResultRow {
	ageRank := groupRanks(s.ByAgeCategory)
	genderRank := groupRanks(s.ByGender)

	rows := make([]ResultRow, 0, len(s.Overall))
	for _, st := range s.Overall {
		rows = append(rows, ResultRow{
			RaceID:          s.RaceID,
			RaceCategory:    s.RaceCategory,
			Rank:            st.Rank,
			AgeCategoryRank: ageRank[st.ID],
			GenderRank:      genderRank[st.ID],
			ParticipantID:   st.ID,
			Name:            st.Name,
			Age:             st.Age,
			AgeCategory:     st.AgeCategory,
			Gender:          st.Gender,
			Club:            st.Club,
			ElapsedSeconds:  st.ElapsedSeconds,
		})
	}
	return rows
}

func groupRanks(groups []ResultGroup) map[int]int {
	ranks := make(map[int]int)
	for _, g := range groups {
		for _, st := range g.Standings {
			ranks[st.ID] = st.Rank
		}
	}
	return ranks
}
