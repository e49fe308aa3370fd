package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/terra-clan/swim-timer/internal/models"
)

// CSVHeader is the fixed column order of the canonical results table
var CSVHeader = []string{"participantId", "name", "age", "ageCategory", "gender", "club", "elapsedSeconds"}

// FormatSeconds renders elapsed seconds with fixed two-decimal precision
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64)
}

// WriteCSV serializes the overall view of a snapshot, one row per finisher in rank order.
// A snapshot without finishers produces the header only.
func WriteCSV(w io.Writer, snap *models.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if snap != nil {
		for _, s := range snap.Overall {
			record := []string{
				strconv.Itoa(s.ID),
				s.Name,
				strconv.Itoa(s.Age),
				s.AgeCategory,
				s.Gender,
				s.Club,
				FormatSeconds(s.ElapsedSeconds),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write participant %d: %w", s.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
