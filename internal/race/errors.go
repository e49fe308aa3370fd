package race

import "errors"

// Common errors
var (
	ErrInvalidState       = errors.New("invalid race state")
	ErrNotRunning         = errors.New("race clock is not running")
	ErrRaceNotRunning     = errors.New("race is not running")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrUnknownCategory    = errors.New("unknown race category")
)
