package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terra-clan/swim-timer/internal/models"
)

func TestDefaultBracketsCategorize(t *testing.T) {
	table := DefaultBrackets()

	tests := []struct {
		age  int
		want string
	}{
		{0, "Under 14"},
		{13, "Under 14"},
		{14, "14-19"},
		{19, "14-19"},
		{27, "20-29"},
		{35, "30-39"},
		{42, "40-49"},
		{59, "50-59"},
		{60, "60-69"},
		{70, "70+"},
		{104, "70+"},
	}

	for _, tt := range tests {
		if got := table.Categorize(tt.age); got != tt.want {
			t.Errorf("Categorize(%d) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestCategorizeIsTotal(t *testing.T) {
	// A table with a gap still places every age somewhere
	table, err := NewBracketTable([]models.Bracket{
		{Label: "Youth", Min: 0, Max: intPtr(17)},
		{Label: "Masters", Min: 30, Max: intPtr(59)},
	}, "Senior")
	if err != nil {
		t.Fatalf("NewBracketTable failed: %v", err)
	}

	for age := 0; age <= 120; age++ {
		got := table.Categorize(age)
		if got == "" {
			t.Fatalf("Categorize(%d) returned empty label", age)
		}
		switch {
		case age <= 17 && got != "Youth":
			t.Errorf("Categorize(%d) = %q, want Youth", age, got)
		case age >= 30 && age <= 59 && got != "Masters":
			t.Errorf("Categorize(%d) = %q, want Masters", age, got)
		case (age >= 18 && age < 30 || age >= 60) && got != "Senior":
			t.Errorf("Categorize(%d) = %q, want Senior", age, got)
		}
	}
}

func TestBracketOrder(t *testing.T) {
	table := DefaultBrackets()

	if table.Order("Under 14") != 0 {
		t.Errorf("expected Under 14 first, got %d", table.Order("Under 14"))
	}
	if table.Order("20-29") >= table.Order("40-49") {
		t.Error("expected 20-29 before 40-49")
	}
	if table.Order(DefaultFallback) <= table.Order("70+") {
		t.Error("expected fallback after the last bracket")
	}
	if table.Order("Unheard of") <= table.Order(DefaultFallback) {
		t.Error("expected unknown labels to sort last")
	}
}

func TestNewBracketTableRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		brackets []models.Bracket
	}{
		{"empty label", []models.Bracket{{Label: "", Min: 0}}},
		{"negative min", []models.Bracket{{Label: "A", Min: -1}}},
		{"max below min", []models.Bracket{{Label: "A", Min: 20, Max: intPtr(10)}}},
		{"duplicate label", []models.Bracket{{Label: "A", Min: 0, Max: intPtr(9)}, {Label: "A", Min: 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBracketTable(tt.brackets, ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseBrackets(t *testing.T) {
	data := []byte(`
fallback: Everyone
brackets:
  - label: Kids
    min: 0
    max: 11
  - label: Adults
    min: 18
`)

	table, err := ParseBrackets(data)
	if err != nil {
		t.Fatalf("ParseBrackets failed: %v", err)
	}

	if table.Fallback() != "Everyone" {
		t.Errorf("expected fallback 'Everyone', got '%s'", table.Fallback())
	}
	if len(table.Brackets()) != 2 {
		t.Fatalf("expected 2 brackets, got %d", len(table.Brackets()))
	}
	if got := table.Categorize(15); got != "Everyone" {
		t.Errorf("Categorize(15) = %q, want Everyone", got)
	}
	if got := table.Categorize(90); got != "Adults" {
		t.Errorf("Categorize(90) = %q, want Adults", got)
	}
}

func TestParseBracketsErrors(t *testing.T) {
	if _, err := ParseBrackets([]byte("brackets: []")); err == nil {
		t.Error("expected error for empty bracket list")
	}
	if _, err := ParseBrackets([]byte("brackets: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadBrackets(t *testing.T) {
	table, err := LoadBrackets("")
	if err != nil {
		t.Fatalf("LoadBrackets with empty path failed: %v", err)
	}
	if len(table.Brackets()) != len(DefaultBrackets().Brackets()) {
		t.Error("expected default table for empty path")
	}

	path := filepath.Join(t.TempDir(), "brackets.yaml")
	if err := os.WriteFile(path, []byte("brackets:\n  - label: All\n    min: 0\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	table, err = LoadBrackets(path)
	if err != nil {
		t.Fatalf("LoadBrackets failed: %v", err)
	}
	if got := table.Categorize(33); got != "All" {
		t.Errorf("Categorize(33) = %q, want All", got)
	}

	if _, err := LoadBrackets(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBracketsFromDataDir(t *testing.T) {
	path := filepath.Join("..", "..", "data", "brackets.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("data directory not found, skipping")
	}

	table, err := LoadBrackets(path)
	if err != nil {
		t.Fatalf("LoadBrackets failed: %v", err)
	}

	def := DefaultBrackets()
	for age := 0; age <= 100; age++ {
		if table.Categorize(age) != def.Categorize(age) {
			t.Errorf("age %d: file table says %q, default says %q", age, table.Categorize(age), def.Categorize(age))
		}
	}
}
