package race

import (
	"sort"
	"time"

	"github.com/terra-clan/swim-timer/internal/models"
)

// Ledger stores at most one immutable finish record per participant.
// Ledger is not safe for concurrent use; Engine serializes access to it.
type Ledger struct {
	records map[int]models.FinishRecord
	seq     uint64
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{records: make(map[int]models.FinishRecord)}
}

// Insert stores a record for participantID unless one exists.
// The existing record is returned unchanged with created set to false.
func (l *Ledger) Insert(participantID int, elapsed time.Duration, recordedBy string) (rec models.FinishRecord, created bool) {
	if existing, ok := l.records[participantID]; ok {
		return existing, false
	}

	l.seq++
	rec = models.FinishRecord{
		ParticipantID: participantID,
		Elapsed:       elapsed,
		Sequence:      l.seq,
		RecordedBy:    recordedBy,
	}
	l.records[participantID] = rec
	return rec, true
}

// Get returns the record of a participant
func (l *Ledger) Get(participantID int) (models.FinishRecord, bool) {
	rec, ok := l.records[participantID]
	return rec, ok
}

// Has checks if a participant has finished
func (l *Ledger) Has(participantID int) bool {
	_, ok := l.records[participantID]
	return ok
}

// Len returns the number of records
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of all records ordered by sequence
func (l *Ledger) Records() []models.FinishRecord {
	result := make([]models.FinishRecord, 0, len(l.records))
	for _, rec := range l.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})
	return result
}

// Clear drops every record. Only the engine's race reset transitions call it.
func (l *Ledger) Clear() {
	l.records = make(map[int]models.FinishRecord)
	l.seq = 0
}
