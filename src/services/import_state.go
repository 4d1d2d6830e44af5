package services

import "fmt"

// ImportState is a phase of the import state machine.
type ImportState string

const (
	StateIdle       ImportState = "idle"
	StateProcessing ImportState = "processing"
	StateReview     ImportState = "review"
	StateSuccess    ImportState = "success"
	StateError      ImportState = "error"
)

type importEvent string

const (
	eventStart      importEvent = "start"
	eventCancel     importEvent = "cancel"
	eventFail       importEvent = "fail"
	eventDuplicates importEvent = "duplicates"
	eventComplete   importEvent = "complete"
	eventConfirm    importEvent = "confirm"
	eventReset      importEvent = "reset"
)

// next returns the state reached from s on event e. It has no side effects.
func (s ImportState) next(e importEvent) (ImportState, error) {
	switch e {
	case eventReset:
		return StateIdle, nil
	case eventStart:
		if s == StateProcessing {
			return s, ErrImportInProgress
		}
		return StateProcessing, nil
	case eventConfirm:
		if s != StateReview {
			return s, ErrNoPendingImport
		}
		return StateSuccess, nil
	}

	if s != StateProcessing {
		return s, fmt.Errorf("invalid import transition %q from state %q", e, s)
	}
	switch e {
	case eventCancel:
		return StateIdle, nil
	case eventFail:
		return StateError, nil
	case eventDuplicates:
		return StateReview, nil
	case eventComplete:
		return StateSuccess, nil
	}
	return s, fmt.Errorf("unknown import event %q", e)
}
