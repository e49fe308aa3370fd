package results

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/roster"
)

func buildCatalog(t *testing.T, rows ...roster.Row) *roster.Catalog {
	t.Helper()
	for i := range rows {
		rows[i].Line = i + 2
	}
	catalog, err := roster.NewCatalog(rows, nil)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return catalog
}

func finish(id int, ms int64, seq uint64) models.FinishRecord {
	return models.FinishRecord{
		ParticipantID: id,
		Elapsed:       time.Duration(ms) * time.Millisecond,
		Sequence:      seq,
	}
}

func TestAggregateTwoSwimmers(t *testing.T) {
	catalog := buildCatalog(t,
		roster.Row{ID: "1", Name: "Alice", Age: "42", Gender: "F"},
		roster.Row{ID: "2", Name: "Bruno", Age: "27", Gender: "M"},
	)

	snap := Aggregate(Input{
		RaceID:  "r1",
		State:   models.RaceStopped,
		Records: []models.FinishRecord{finish(2, 95010, 1), finish(1, 120340, 2)},
		Catalog: catalog,
	})

	if len(snap.Overall) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(snap.Overall))
	}
	if snap.Overall[0].ID != 2 || snap.Overall[0].Rank != 1 {
		t.Errorf("expected id 2 first, got %+v", snap.Overall[0])
	}
	if snap.Overall[1].ID != 1 || snap.Overall[1].Rank != 2 {
		t.Errorf("expected id 1 second, got %+v", snap.Overall[1])
	}

	if len(snap.ByAgeCategory) != 2 {
		t.Fatalf("expected 2 age groups, got %d", len(snap.ByAgeCategory))
	}
	if snap.ByAgeCategory[0].Key != "20-29" || snap.ByAgeCategory[1].Key != "40-49" {
		t.Errorf("unexpected group order: %s, %s", snap.ByAgeCategory[0].Key, snap.ByAgeCategory[1].Key)
	}
	for _, g := range snap.ByAgeCategory {
		if len(g.Standings) != 1 || g.Standings[0].Rank != 1 {
			t.Errorf("group %s: expected one finisher at rank 1, got %+v", g.Key, g.Standings)
		}
	}

	if snap.AgeCategory("30-39") != nil {
		t.Error("expected categories without finishers to be absent")
	}
	if g := snap.AgeGender("40-49", "F"); g == nil || g.Standings[0].ID != 1 {
		t.Errorf("unexpected 40-49 / F view: %+v", g)
	}
}

func TestAggregateTiesBreakByID(t *testing.T) {
	catalog := buildCatalog(t,
		roster.Row{ID: "9", Name: "Nine", Age: "30"},
		roster.Row{ID: "4", Name: "Four", Age: "30"},
		roster.Row{ID: "6", Name: "Six", Age: "30"},
	)

	snap := Aggregate(Input{
		Records: []models.FinishRecord{finish(9, 60000, 1), finish(6, 60000, 2), finish(4, 60000, 3)},
		Catalog: catalog,
	})

	want := []int{4, 6, 9}
	for i, id := range want {
		if snap.Overall[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, snap.Overall[i].ID)
		}
		if snap.Overall[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, snap.Overall[i].Rank)
		}
	}
}

func TestAggregateGroupRanksAreIndependent(t *testing.T) {
	catalog := buildCatalog(t,
		roster.Row{ID: "1", Name: "A", Age: "25", Gender: "F"},
		roster.Row{ID: "2", Name: "B", Age: "25", Gender: "M"},
		roster.Row{ID: "3", Name: "C", Age: "65", Gender: "F"},
		roster.Row{ID: "4", Name: "D", Age: "25", Gender: "F"},
		roster.Row{ID: "5", Name: "E", Age: "8"},
	)

	snap := Aggregate(Input{
		Records: []models.FinishRecord{
			finish(3, 50000, 1),
			finish(1, 60000, 2),
			finish(2, 70000, 3),
			finish(4, 80000, 4),
			finish(5, 90000, 5),
		},
		Catalog: catalog,
	})

	twenties := snap.AgeCategory("20-29")
	if twenties == nil || len(twenties.Standings) != 3 {
		t.Fatalf("unexpected 20-29 view: %+v", twenties)
	}
	for i, id := range []int{1, 2, 4} {
		if twenties.Standings[i].ID != id || twenties.Standings[i].Rank != i+1 {
			t.Errorf("20-29 position %d: got id %d rank %d", i, twenties.Standings[i].ID, twenties.Standings[i].Rank)
		}
	}

	women := snap.Gender("F")
	if women == nil || len(women.Standings) != 3 || women.Standings[0].ID != 3 {
		t.Errorf("unexpected F view: %+v", women)
	}

	order := make([]string, len(snap.ByAgeCategory))
	for i, g := range snap.ByAgeCategory {
		order[i] = g.Key
	}
	if len(order) != 3 || order[0] != "Under 14" || order[1] != "20-29" || order[2] != "60-69" {
		t.Errorf("expected bracket order, got %v", order)
	}

	genders := make([]string, len(snap.ByGender))
	for i, g := range snap.ByGender {
		genders[i] = g.Key
	}
	if len(genders) != 3 || genders[0] != "F" || genders[1] != "M" || genders[2] != roster.UnspecifiedGender {
		t.Errorf("expected lexicographic gender order, got %v", genders)
	}

	cross := snap.AgeGender("20-29", "F")
	if cross == nil || len(cross.Standings) != 2 || cross.Standings[1].ID != 4 || cross.Standings[1].Rank != 2 {
		t.Errorf("unexpected 20-29 / F view: %+v", cross)
	}
}

func TestAggregateCrossGroupsKeepLabelsApart(t *testing.T) {
	upper := 29
	table, err := roster.NewBracketTable([]models.Bracket{
		{Label: "A", Min: 0, Max: &upper},
		{Label: "A / B", Min: 30},
	}, "")
	if err != nil {
		t.Fatalf("NewBracketTable failed: %v", err)
	}
	catalog, err := roster.NewCatalog([]roster.Row{
		{Line: 2, ID: "1", Name: "X", Age: "20", Gender: "B / C"},
		{Line: 3, ID: "2", Name: "Y", Age: "40", Gender: "C"},
	}, table)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	snap := Aggregate(Input{
		Records: []models.FinishRecord{finish(1, 1000, 1), finish(2, 2000, 2)},
		Catalog: catalog,
	})

	if len(snap.ByAgeGender) != 2 {
		t.Fatalf("expected 2 cross groups, got %+v", snap.ByAgeGender)
	}
	first := snap.AgeGender("A", "B / C")
	if first == nil || len(first.Standings) != 1 || first.Standings[0].ID != 1 || first.Standings[0].Rank != 1 {
		t.Errorf("unexpected A x B / C view: %+v", first)
	}
	second := snap.AgeGender("A / B", "C")
	if second == nil || len(second.Standings) != 1 || second.Standings[0].ID != 2 || second.Standings[0].Rank != 1 {
		t.Errorf("unexpected A / B x C view: %+v", second)
	}
}

func TestAggregateReportsFaults(t *testing.T) {
	catalog := buildCatalog(t, roster.Row{ID: "1", Name: "A", Age: "30"})

	snap := Aggregate(Input{
		Records: []models.FinishRecord{finish(1, 1000, 1), finish(77, 500, 2)},
		Catalog: catalog,
	})

	if len(snap.Overall) != 1 || snap.Overall[0].ID != 1 {
		t.Errorf("expected only the known participant, got %+v", snap.Overall)
	}
	if len(snap.Faults) != 1 {
		t.Fatalf("expected 1 fault, got %d", len(snap.Faults))
	}
	if snap.Faults[0].ParticipantID != 77 || snap.Faults[0].Sequence != 2 {
		t.Errorf("unexpected fault: %+v", snap.Faults[0])
	}
}

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(Input{State: models.RaceIdle})

	if snap.Overall == nil || snap.ByAgeCategory == nil || snap.ByGender == nil || snap.ByAgeGender == nil {
		t.Fatal("expected empty, non-nil views")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"state":"idle","version":0,"overall":[],"by_age_category":[],"by_gender":[],"by_age_gender":[]}`
	if string(data) != want {
		t.Errorf("unexpected JSON:\n got %s\nwant %s", data, want)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	catalog := buildCatalog(t,
		roster.Row{ID: "1", Name: "A", Age: "30", Gender: "F"},
		roster.Row{ID: "2", Name: "B", Age: "41", Gender: "M"},
		roster.Row{ID: "3", Name: "C", Age: "30", Gender: "M"},
	)
	in := Input{
		RaceID:  "r1",
		State:   models.RaceRunning,
		Version: 5,
		Records: []models.FinishRecord{finish(2, 3000, 1), finish(3, 2000, 2), finish(1, 2000, 3)},
		Catalog: catalog,
	}

	first, err := json.Marshal(Aggregate(in))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		next, err := json.Marshal(Aggregate(in))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(next) != string(first) {
			t.Fatalf("run %d differs:\n%s\n%s", i, next, first)
		}
	}
}
