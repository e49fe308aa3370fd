package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// columnAliases maps normalized header names to roster fields
var columnAliases = map[string]string{
	"id":            "id",
	"swimmerid":     "id",
	"participantid": "id",
	"bib":           "id",
	"name":          "name",
	"age":           "age",
	"gender":        "gender",
	"sex":           "gender",
	"club":          "club",
	"team":          "club",
	"racecategory":  "race_category",
	"category":      "race_category",
	"heat":          "race_category",
	"distance":      "race_category",
	"attending":     "attending",
	"present":       "attending",
}

var requiredColumns = []string{"id", "name", "age"}

// ReadCSV parses a roster table. Columns are matched by header name, case and separators ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("roster is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		field, ok := columnAliases[normalizeHeader(name)]
		if !ok {
			continue
		}
		if _, dup := columns[field]; !dup {
			columns[field] = i
		}
	}

	for _, field := range requiredColumns {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("roster is missing required column %q", field)
		}
	}

	var rows []Row
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if isBlank(rec) {
			continue
		}

		rows = append(rows, Row{
			Line:         line,
			ID:           field(rec, columns, "id"),
			Name:         field(rec, columns, "name"),
			Age:          field(rec, columns, "age"),
			Gender:       field(rec, columns, "gender"),
			Club:         field(rec, columns, "club"),
			RaceCategory: field(rec, columns, "race_category"),
			Attending:    field(rec, columns, "attending"),
		})
	}

	return rows, nil
}

// ReadCSVFile parses a roster file from disk
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

func field(rec []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
