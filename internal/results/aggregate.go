package results

import (
	"sort"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/roster"
)

// Input is a frozen copy of the race state to aggregate
type Input struct {
	RaceID  string
	State   models.RaceState
	Version uint64
	Records []models.FinishRecord
	Catalog *roster.Catalog
}

// ranked pairs a standing with the exact elapsed time used for ordering
type ranked struct {
	standing models.Standing
	elapsed  int64
}

// Aggregate joins finish records with the roster and builds every ranked view.
// It has no side effects: equal inputs produce equal snapshots.
func Aggregate(in Input) *models.Snapshot {
	snap := &models.Snapshot{
		RaceID:        in.RaceID,
		State:         in.State,
		Version:       in.Version,
		Overall:       []models.Standing{},
		ByAgeCategory: []models.ResultGroup{},
		ByGender:      []models.ResultGroup{},
		ByAgeGender:   []models.ResultGroup{},
	}

	table := roster.DefaultBrackets()
	if in.Catalog != nil {
		snap.RaceCategory = in.Catalog.Category()
		table = in.Catalog.Brackets()
	}

	rows := make([]ranked, 0, len(in.Records))
	for _, rec := range in.Records {
		var (
			p  models.Participant
			ok bool
		)
		if in.Catalog != nil {
			p, ok = in.Catalog.Get(rec.ParticipantID)
		}
		if !ok {
			snap.Faults = append(snap.Faults, models.IntegrityFault{
				ParticipantID: rec.ParticipantID,
				Sequence:      rec.Sequence,
				Reason:        "participant not in roster",
			})
			continue
		}
		rows = append(rows, ranked{
			standing: models.Standing{
				Participant:    p,
				ElapsedSeconds: rec.ElapsedSeconds(),
			},
			elapsed: int64(rec.Elapsed),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].elapsed != rows[j].elapsed {
			return rows[i].elapsed < rows[j].elapsed
		}
		return rows[i].standing.ID < rows[j].standing.ID
	})

	ordered := make([]models.Standing, len(rows))
	for i, r := range rows {
		ordered[i] = r.standing
	}
	snap.Overall = rank(ordered)

	snap.ByAgeCategory = group(ordered, func(s models.Standing) models.ResultGroup {
		return models.ResultGroup{Key: s.AgeCategory, AgeCategory: s.AgeCategory}
	})
	snap.ByGender = group(ordered, func(s models.Standing) models.ResultGroup {
		return models.ResultGroup{Key: s.Gender, Gender: s.Gender}
	})
	snap.ByAgeGender = group(ordered, func(s models.Standing) models.ResultGroup {
		return models.ResultGroup{
			Key:         models.AgeGenderKey(s.AgeCategory, s.Gender),
			AgeCategory: s.AgeCategory,
			Gender:      s.Gender,
		}
	})

	sortGroups(snap.ByAgeCategory, table)
	sortGroups(snap.ByGender, table)
	sortGroups(snap.ByAgeGender, table)

	return snap
}

// rank assigns contiguous 1-based ranks to an ordered view
func rank(standings []models.Standing) []models.Standing {
	out := make([]models.Standing, len(standings))
	for i, s := range standings {
		s.Rank = i + 1
		out[i] = s
	}
	return out
}

// groupKey identifies a group by its labels, not by the joined display key
type groupKey struct {
	ageCategory string
	gender      string
}

// group splits an ordered view; only keys with at least one finisher appear
func group(ordered []models.Standing, keyOf func(models.Standing) models.ResultGroup) []models.ResultGroup {
	index := make(map[groupKey]int)
	groups := []models.ResultGroup{}
	for _, s := range ordered {
		g := keyOf(s)
		k := groupKey{ageCategory: g.AgeCategory, gender: g.Gender}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, g)
		}
		groups[i].Standings = append(groups[i].Standings, s)
	}
	for i := range groups {
		groups[i].Standings = rank(groups[i].Standings)
	}
	return groups
}

// sortGroups orders age categories by the bracket table, then genders by name
func sortGroups(groups []models.ResultGroup, table *roster.BracketTable) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.AgeCategory != b.AgeCategory {
			oa, ob := table.Order(a.AgeCategory), table.Order(b.AgeCategory)
			if oa != ob {
				return oa < ob
			}
			return a.AgeCategory < b.AgeCategory
		}
		return a.Gender < b.Gender
	})
}
