package instances

import "fmt"

// State is a stage of an installation
type State uint8

const (
	StateNotResolved State = iota
	StateResolving
	StateResolved
	StatePlanning
	StateDownloading
	StateExtracting
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotResolved:
		return "not resolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StatePlanning:
		return "planning"
	case StateDownloading:
		return "downloading"
	case StateExtracting:
		return "extracting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// StageError is returned when an installation fails. Stage is the state it failed in
type StageError struct {
	ID    string
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("installing %s failed while %s: %v", e.ID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
