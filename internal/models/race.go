package models

import (
	"encoding/json"
	"time"
)

// RaceState represents the lifecycle state of the race clock
type RaceState string

const (
	RaceIdle    RaceState = "idle"
	RaceRunning RaceState = "running"
	RaceStopped RaceState = "stopped"
)

// IsRunning returns true if finishes can be recorded
func (s RaceState) IsRunning() bool {
	return s == RaceRunning
}

// FinishRecord is the single, immutable finish entry of a participant.
// Sequence orders records by the instant they were taken.
type FinishRecord struct {
	ParticipantID int
	Elapsed       time.Duration
	Sequence      uint64
	RecordedBy    string
}

// ElapsedSeconds returns the finish time in seconds
func (r FinishRecord) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

type finishRecordJSON struct {
	ParticipantID  int     `json:"participant_id"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Sequence       uint64  `json:"sequence"`
	RecordedBy     string  `json:"recorded_by,omitempty"`
}

// MarshalJSON encodes the elapsed time as seconds
func (r FinishRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(finishRecordJSON{
		ParticipantID:  r.ParticipantID,
		ElapsedSeconds: r.ElapsedSeconds(),
		Sequence:       r.Sequence,
		RecordedBy:     r.RecordedBy,
	})
}

// UnmarshalJSON decodes a record encoded by MarshalJSON
func (r *FinishRecord) UnmarshalJSON(data []byte) error {
	var raw finishRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ParticipantID = raw.ParticipantID
	r.Elapsed = time.Duration(raw.ElapsedSeconds * float64(time.Second))
	r.Sequence = raw.Sequence
	r.RecordedBy = raw.RecordedBy
	return nil
}

// RaceStatus is the polled view of the race clock
type RaceStatus struct {
	RaceID         string    `json:"race_id,omitempty"`
	State          RaceState `json:"state"`
	RaceCategory   string    `json:"race_category,omitempty"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Clock          string    `json:"clock"`
	Finishers      int       `json:"finishers"`
	Participants   int       `json:"participants"`
	Version        uint64    `json:"version"`
}

// FinishResponse is returned after a finish tap
type FinishResponse struct {
	Record  FinishRecord `json:"record"`
	Created bool         `json:"created"`
}

// StopResponse is returned after a stop request
type StopResponse struct {
	State          RaceState `json:"state"`
	AlreadyStopped bool      `json:"already_stopped"`
}
