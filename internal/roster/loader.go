package roster

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/swim-timer/internal/models"
)

// bracketFile is the YAML layout of an age category table
type bracketFile struct {
	Fallback string           `yaml:"fallback"`
	Brackets []models.Bracket `yaml:"brackets"`
}

// LoadBrackets reads an age category table from a YAML file.
// An empty path yields the default table.
func LoadBrackets(path string) (*BracketTable, error) {
	if path == "" {
		return DefaultBrackets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	table, err := ParseBrackets(data)
	if err != nil {
		return nil, err
	}

	slog.Info("age brackets loaded", "file", path, "brackets", len(table.brackets), "fallback", table.fallback)
	return table, nil
}

// ParseBrackets decodes a YAML age category table
func ParseBrackets(data []byte) (*BracketTable, error) {
	var f bracketFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(f.Brackets) == 0 {
		return nil, fmt.Errorf("at least one bracket is required")
	}

	return NewBracketTable(f.Brackets, f.Fallback)
}
