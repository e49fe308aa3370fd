package storage

import (
	"context"

	"github.com/terra-clan/swim-timer/internal/models"
)

// Repository defines the interface for published results persistence.
// Only the most recently published race is kept.
type Repository interface {
	ReplaceResults(ctx context.Context, raceID string, rows []models.ResultRow) error
	ListResults(ctx context.Context) ([]models.ResultRow, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
