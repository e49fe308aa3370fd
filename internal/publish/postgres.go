package publish

import (
	"context"
	"log/slog"

	"github.com/terra-clan/swim-timer/internal/storage"
)

// PostgresSink replaces the published standings in the results database
type PostgresSink struct {
	BaseSink
	repo storage.Repository
}

// NewPostgresSink creates a sink over a results repository
func NewPostgresSink(repo storage.Repository) *PostgresSink {
	return &PostgresSink{
		BaseSink: BaseSink{sinkType: "postgres"},
		repo:     repo,
	}
}

// Publish stores the overall standings of the snapshot
func (s *PostgresSink) Publish(ctx context.Context, pub *Publication) error {
	rows := pub.Snapshot.ResultRows()
	if err := s.repo.ReplaceResults(ctx, pub.Snapshot.RaceID, rows); err != nil {
		return err
	}

	slog.Debug("results published to postgres",
		"race_id", pub.Snapshot.RaceID,
		"rows", len(rows),
	)
	return nil
}

// HealthCheck verifies database connectivity
func (s *PostgresSink) HealthCheck(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
