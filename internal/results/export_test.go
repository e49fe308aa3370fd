package results

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/roster"
)

const headerLine = "participantId,name,age,ageCategory,gender,club,elapsedSeconds"

func sampleSnapshot(t *testing.T) *models.Snapshot {
	t.Helper()
	catalog := buildCatalog(t,
		roster.Row{ID: "1", Name: "Alice", Age: "42", Gender: "F", Club: "Harbour SC"},
		roster.Row{ID: "2", Name: "Silva, Bruno", Age: "27", Gender: "M"},
	)
	return Aggregate(Input{
		RaceID:  "r1",
		State:   models.RaceStopped,
		Records: []models.FinishRecord{finish(2, 95010, 1), finish(1, 120340, 2)},
		Catalog: catalog,
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSnapshot(t)); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := headerLine + "\n" +
		"2,\"Silva, Bruno\",27,20-29,M,,95.01\n" +
		"1,Alice,42,40-49,F,Harbour SC,120.34\n"
	if buf.String() != want {
		t.Errorf("unexpected CSV:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	for name, snap := range map[string]*models.Snapshot{
		"nil":   nil,
		"empty": Aggregate(Input{}),
	} {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, snap); err != nil {
			t.Fatalf("%s: WriteCSV failed: %v", name, err)
		}
		if buf.String() != headerLine+"\n" {
			t.Errorf("%s: expected header only, got %q", name, buf.String())
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := map[float64]string{
		0:        "0.00",
		95.01:    "95.01",
		120.3449: "120.34",
		61.5:     "61.50",
	}
	for in, want := range tests {
		if got := FormatSeconds(in); got != want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sampleSnapshot(t)); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Overall", "20-29", "40-49"}
	if strings.Join(sheets, "|") != strings.Join(want, "|") {
		t.Errorf("expected sheets %v, got %v", want, sheets)
	}

	rows, err := f.GetRows("Overall")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][7] != "Time (s)" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "2" || rows[1][7] != "95.01" {
		t.Errorf("unexpected first row: %v", rows[1])
	}

	forties, err := f.GetRows("40-49")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(forties) != 2 || forties[1][0] != "1" || forties[1][2] != "Alice" {
		t.Errorf("unexpected 40-49 sheet: %v", forties)
	}
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, nil); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Overall" {
		t.Errorf("expected only the overall sheet, got %v", sheets)
	}
}

func TestWriteWorkbookSheetNamesIgnoreCase(t *testing.T) {
	snap := &models.Snapshot{
		Overall: []models.Standing{},
		ByAgeCategory: []models.ResultGroup{
			{Key: "overall", AgeCategory: "overall", Standings: []models.Standing{}},
		},
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, snap); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Overall" || sheets[1] != "overall (2)" {
		t.Errorf("expected a distinct sheet for the overall bracket, got %v", sheets)
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"overall": true}

	if got := sheetName("40/49: masters", used); got != "40-49- masters" {
		t.Errorf("unexpected sanitized name %q", got)
	}
	if got := sheetName("Overall", used); got != "Overall (2)" {
		t.Errorf("expected de-duplicated name, got %q", got)
	}
	if got := sheetName("OVERALL", used); got != "OVERALL (3)" {
		t.Errorf("expected case-insensitive de-duplication, got %q", got)
	}

	long := strings.Repeat("x", 40)
	first := sheetName(long, used)
	second := sheetName(long, used)
	if len(first) != 31 || len(second) != 31 {
		t.Errorf("expected 31-character names, got %d and %d", len(first), len(second))
	}
	if first == second {
		t.Error("expected distinct names for duplicate long labels")
	}
}
