package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/swim-timer/internal/models"
)

const (
	overallSheet = "Overall"
	maxSheetName = 31
)

// WorkbookContentType is the MIME type of WriteWorkbook output
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var workbookHeader = []interface{}{"Rank", "ID", "Name", "Age", "Age Category", "Gender", "Club", "Time (s)"}

// WriteWorkbook renders the results protocol: an overall sheet followed by
// one sheet per age category, each with its own ranks.
func WriteWorkbook(w io.Writer, snap *models.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"1c399e"},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Color: "ffffff",
			Bold:  true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), overallSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	var overall []models.Standing
	var groups []models.ResultGroup
	if snap != nil {
		overall = snap.Overall
		groups = snap.ByAgeCategory
	}

	if err := writeSheet(f, overallSheet, overall, headerStyle); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(overallSheet): true}
	for _, g := range groups {
		name := sheetName(g.Key, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, g.Standings, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, standings []models.Standing, headerStyle int) error {
	header := append([]interface{}(nil), workbookHeader...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %q: %w", sheet, err)
	}

	for i, s := range standings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.Rank, s.ID, s.Name, s.Age, s.AgeCategory, s.Gender, s.Club, FormatSeconds(s.ElapsedSeconds)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, sheet, err)
		}
	}

	return f.SetColWidth(sheet, "C", "C", 28)
}

// sheetName makes a category label usable as a unique worksheet name
func sheetName(label string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, label)
	if name == "" {
		name = "Category"
	}
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}

	base := name
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
