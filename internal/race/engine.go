package race

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/results"
	"github.com/terra-clan/swim-timer/internal/roster"
)

// Controller defines the control surface the presentation layer drives
type Controller interface {
	Start() (string, error)
	Stop() (bool, error)
	Reset()
	Elapsed() (time.Duration, error)
	State() models.RaceState
	Status() models.RaceStatus
	Record(participantID int, observer string) (models.FinishRecord, bool, error)
	Has(participantID int) bool
	All() iter.Seq[models.FinishRecord]
	Snapshot() *models.Snapshot
	Catalog() *roster.Catalog
	Roster() *roster.Catalog
	SelectCategory(raceCategory string) error
	Version() uint64
}

// Option configures an Engine
type Option func(*Engine)

// WithTimeSource replaces time.Now. The source must be monotonic.
func WithTimeSource(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRaceIDs replaces the race ID generator
func WithRaceIDs(next func() string) Option {
	return func(e *Engine) {
		e.newRaceID = next
	}
}

// Engine binds the clock, the finish ledger and the active roster under a
// single exclusive-access region. Mutations hold the write lock for their
// whole duration; reads copy what they need under the read lock.
type Engine struct {
	mu      sync.RWMutex
	clock   *Clock
	ledger  *Ledger
	roster  *roster.Catalog
	active  *roster.Catalog
	raceID  string
	version atomic.Uint64

	now       func() time.Time
	newRaceID func() string
}

// NewEngine creates an idle engine over a validated roster
func NewEngine(catalog *roster.Catalog, opts ...Option) *Engine {
	e := &Engine{
		clock:     NewClock(),
		ledger:    NewLedger(),
		roster:    catalog,
		active:    catalog,
		now:       time.Now,
		newRaceID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a race. Records of a previous race are cleared in the same transition.
func (e *Engine) Start() (string, error) {
	e.mu.Lock()
	prev := e.clock.State()
	if err := e.clock.Start(e.now()); err != nil {
		e.mu.Unlock()
		return "", err
	}
	cleared := e.ledger.Len()
	e.ledger.Clear()
	e.raceID = e.newRaceID()
	raceID, active := e.raceID, e.active
	e.version.Add(1)
	e.mu.Unlock()

	slog.Info("race started",
		"race_id", raceID,
		"previous_state", prev,
		"cleared_records", cleared,
		"race_category", active.Category(),
		"participants", active.Len(),
	)
	return raceID, nil
}

// Stop freezes the race clock. It reports false when the race was already stopped.
func (e *Engine) Stop() (bool, error) {
	e.mu.Lock()
	stopped, err := e.clock.Stop(e.now())
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	raceID, final, finishers := e.raceID, e.clock.Final(), e.ledger.Len()
	if stopped {
		e.version.Add(1)
	}
	e.mu.Unlock()

	if !stopped {
		slog.Debug("duplicate stop request ignored", "race_id", raceID)
		return false, nil
	}

	slog.Info("race stopped",
		"race_id", raceID,
		"duration", FormatClock(final),
		"finishers", finishers,
	)
	return true, nil
}

// Reset returns the engine to idle, dropping the race and its records
func (e *Engine) Reset() {
	e.mu.Lock()
	raceID := e.raceID
	e.clock.Reset()
	e.ledger.Clear()
	e.raceID = ""
	e.version.Add(1)
	e.mu.Unlock()

	slog.Info("race reset", "race_id", raceID)
}

// Elapsed returns the time since start. Only valid while running.
func (e *Engine) Elapsed() (time.Duration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock.Elapsed(e.now())
}

// State returns the race lifecycle state
func (e *Engine) State() models.RaceState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock.State()
}

// Status returns the polled view of the race clock
func (e *Engine) Status() models.RaceStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var elapsed time.Duration
	switch e.clock.State() {
	case models.RaceRunning:
		elapsed, _ = e.clock.Elapsed(e.now())
	case models.RaceStopped:
		elapsed = e.clock.Final()
	}

	return models.RaceStatus{
		RaceID:         e.raceID,
		State:          e.clock.State(),
		RaceCategory:   e.active.Category(),
		ElapsedSeconds: elapsed.Seconds(),
		Clock:          FormatClock(elapsed),
		Finishers:      e.ledger.Len(),
		Participants:   e.active.Len(),
		Version:        e.version.Load(),
	}
}

// Record stores the finish of a participant at the current elapsed time.
// A participant who already finished keeps the original record and created is false.
func (e *Engine) Record(participantID int, observer string) (models.FinishRecord, bool, error) {
	e.mu.Lock()
	if !e.clock.State().IsRunning() {
		state := e.clock.State()
		e.mu.Unlock()
		return models.FinishRecord{}, false, fmt.Errorf("%w: race is %s", ErrRaceNotRunning, state)
	}
	if !e.active.Contains(participantID) {
		e.mu.Unlock()
		return models.FinishRecord{}, false, fmt.Errorf("%w: %d", ErrUnknownParticipant, participantID)
	}
	if existing, ok := e.ledger.Get(participantID); ok {
		e.mu.Unlock()
		slog.Debug("duplicate finish ignored", "participant_id", participantID, "observer", observer)
		return existing, false, nil
	}

	elapsed, err := e.clock.Elapsed(e.now())
	if err != nil {
		e.mu.Unlock()
		return models.FinishRecord{}, false, err
	}
	rec, created := e.ledger.Insert(participantID, elapsed, strings.TrimSpace(observer))
	e.version.Add(1)
	raceID := e.raceID
	e.mu.Unlock()

	slog.Info("finish recorded",
		"race_id", raceID,
		"participant_id", participantID,
		"elapsed", FormatClock(rec.Elapsed),
		"sequence", rec.Sequence,
		"observer", rec.RecordedBy,
	)
	return rec, created, nil
}

// Has checks if a participant already has a finish record
func (e *Engine) Has(participantID int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Has(participantID)
}

// All returns the finish records as of the call, in sequence order.
// The returned sequence can be ranged over once; call All again for a fresh view.
func (e *Engine) All() iter.Seq[models.FinishRecord] {
	e.mu.RLock()
	frozen := e.ledger.Records()
	e.mu.RUnlock()

	var consumed atomic.Bool
	return func(yield func(models.FinishRecord) bool) {
		if consumed.Swap(true) {
			return
		}
		for _, rec := range frozen {
			if !yield(rec) {
				return
			}
		}
	}
}

// Snapshot aggregates the current results. State is copied under the read
// lock and the join and ranking run after it is released.
func (e *Engine) Snapshot() *models.Snapshot {
	e.mu.RLock()
	in := results.Input{
		RaceID:  e.raceID,
		State:   e.clock.State(),
		Version: e.version.Load(),
		Records: e.ledger.Records(),
		Catalog: e.active,
	}
	e.mu.RUnlock()

	snap := results.Aggregate(in)
	for _, fault := range snap.Faults {
		slog.Warn("finish record excluded from results",
			"race_id", snap.RaceID,
			"participant_id", fault.ParticipantID,
			"sequence", fault.Sequence,
			"reason", fault.Reason,
		)
	}
	return snap
}

// Catalog returns the active, category-filtered roster
func (e *Engine) Catalog() *roster.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Roster returns the full roster regardless of the selected category
func (e *Engine) Roster() *roster.Catalog {
	return e.roster
}

// SelectCategory scopes finish recording to one race category.
// The roster is read-only during a race, so this is only allowed while idle.
// An empty category selects the whole roster; any other name must exist in it.
func (e *Engine) SelectCategory(raceCategory string) error {
	if name := strings.TrimSpace(raceCategory); name != "" && !hasCategory(e.roster, name) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}

	e.mu.Lock()
	if state := e.clock.State(); state != models.RaceIdle {
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot change category while %s", ErrInvalidState, state)
	}
	e.active = e.roster.Filter(raceCategory)
	participants := e.active.Len()
	e.version.Add(1)
	e.mu.Unlock()

	slog.Info("race category selected", "race_category", raceCategory, "participants", participants)
	return nil
}

func hasCategory(catalog *roster.Catalog, name string) bool {
	for _, c := range catalog.RaceCategories() {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// Version increases on every successful mutation. Pollers compare it to detect change.
func (e *Engine) Version() uint64 {
	return e.version.Load()
}
