// Package domain provides core business rules for the pipeline bounded context.
package domain

import "fmt"

// State is a company's position in the outreach pipeline.
type State string

const (
	// StatePendingGeneration is the initial state, assigned at import.
	StatePendingGeneration State = "pending_generation"
	// StateEmailNotGenerated means generation could not produce a draft.
	StateEmailNotGenerated State = "email_not_generated"
	// StatePendingReview means a draft exists and awaits human review.
	StatePendingReview State = "pending_review"
	// StateApprovedToSend means the draft content is frozen and ready to send.
	StateApprovedToSend State = "approved_to_send"
	// StateSent is terminal.
	StateSent State = "sent"
)

// allowedTransitions is the full adjacency table of the pipeline.
// A pair absent from this table is an invalid transition, including
// no-op self-transitions: callers are expected to know the current state.
var allowedTransitions = map[State][]State{
	StatePendingGeneration: {StateEmailNotGenerated, StatePendingReview},
	StateEmailNotGenerated: {StatePendingGeneration},
	StatePendingReview:     {StateApprovedToSend, StatePendingGeneration},
	StateApprovedToSend:    {StateSent, StatePendingReview},
	StateSent:              {},
}

// AllStates lists every pipeline state in typical progress order.
var AllStates = []State{
	StatePendingGeneration,
	StateEmailNotGenerated,
	StatePendingReview,
	StateApprovedToSend,
	StateSent,
}

// IsKnown reports whether s is one of the canonical pipeline states.
func IsKnown(s State) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible from s.
func IsTerminal(s State) bool {
	return len(allowedTransitions[s]) == 0 && IsKnown(s)
}

// CanTransition reports whether the edge (from, to) exists in the
// adjacency table.
func CanTransition(from, to State) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a descriptive error when the edge (from, to)
// is not allowed. The error names both states so batch callers can surface
// it verbatim.
func ValidateTransition(from, to State) error {
	if !IsKnown(to) {
		return fmt.Errorf("unknown pipeline state %q", to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid state transition from %s to %s", from, to)
	}
	return nil
}

// Parse converts raw storage text into a State.
func Parse(raw string) (State, error) {
	s := State(raw)
	if !IsKnown(s) {
		return "", fmt.Errorf("unknown pipeline state %q", raw)
	}
	return s, nil
}
