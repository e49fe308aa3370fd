package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/results"
)

// Sink defines the interface for result publication targets
type Sink interface {
	// Publish pushes a results snapshot to the target
	Publish(ctx context.Context, pub *Publication) error

	// Type returns the sink type name
	Type() string

	// HealthCheck checks if the target is reachable
	HealthCheck(ctx context.Context) error
}

// BaseSink provides common functionality for sinks
type BaseSink struct {
	sinkType string
}

// Type returns the sink type
func (s *BaseSink) Type() string {
	return s.sinkType
}

// Publication is a snapshot together with its canonical CSV rendering
type Publication struct {
	Snapshot *models.Snapshot
	CSV      []byte
}

// NewPublication renders the canonical export of snap
func NewPublication(snap *models.Snapshot) (*Publication, error) {
	var buf bytes.Buffer
	if err := results.WriteCSV(&buf, snap); err != nil {
		return nil, fmt.Errorf("failed to export results: %w", err)
	}
	return &Publication{Snapshot: snap, CSV: buf.Bytes()}, nil
}
