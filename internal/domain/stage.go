package domain

import (
	"errors"
	"fmt"
)

// Stage is the client-side booking stage. It is not persisted; the server
// record tracks its own coarser stage independently.
type Stage int

const (
	// StageSearch shows search inputs and outbound/hotel results.
	StageSearch Stage = iota
	// StageSelectInbound shows return options scoped to a chosen outbound.
	StageSelectInbound
	// StageConfirm shows the confirmation summary.
	StageConfirm
)

func (s Stage) String() string {
	switch s {
	case StageSearch:
		return "search"
	case StageSelectInbound:
		return "select_inbound"
	case StageConfirm:
		return "confirm"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Event is an input to the stage machine.
type Event int

const (
	// EventSearch replaces search results; legal from any stage.
	EventSearch Event = iota
	// EventOutboundChosen records a successful outbound selection.
	EventOutboundChosen
	// EventInboundChosen records an inbound selection.
	EventInboundChosen
	// EventChangeOutbound abandons the chosen outbound.
	EventChangeOutbound
	// EventReset returns to the initial state.
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventSearch:
		return "search"
	case EventOutboundChosen:
		return "outbound_chosen"
	case EventInboundChosen:
		return "inbound_chosen"
	case EventChangeOutbound:
		return "change_outbound"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition reports a stage/event pair the machine does not
// accept.
var ErrInvalidTransition = errors.New("invalid stage transition")

// Transition is the pure stage-transition function. It has no side
// effects; callers apply the returned stage and perform I/O separately.
func Transition(s Stage, e Event) (Stage, error) {
	switch e {
	case EventSearch:
		// A new search is always legal and lands back on the search stage.
		return StageSearch, nil
	case EventReset:
		return StageSearch, nil
	case EventOutboundChosen:
		if s != StageSearch {
			return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
		}
		return StageSelectInbound, nil
	case EventInboundChosen:
		if s != StageSelectInbound {
			return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
		}
		return StageConfirm, nil
	case EventChangeOutbound:
		if s != StageSelectInbound && s != StageConfirm {
			return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
		}
		return StageSearch, nil
	default:
		return s, fmt.Errorf("%w: unknown event %s", ErrInvalidTransition, e)
	}
}
