package domain

import (
	"strings"
	"testing"
)

// TestCanTransitionExhaustive checks every ordered pair of states against
// the adjacency table, so any accidental edge addition or removal fails here.
func TestCanTransitionExhaustive(t *testing.T) {
	allowed := map[[2]State]bool{
		{StatePendingGeneration, StateEmailNotGenerated}: true,
		{StatePendingGeneration, StatePendingReview}:     true,
		{StateEmailNotGenerated, StatePendingGeneration}: true,
		{StatePendingReview, StateApprovedToSend}:        true,
		{StatePendingReview, StatePendingGeneration}:     true,
		{StateApprovedToSend, StateSent}:                 true,
		{StateApprovedToSend, StatePendingReview}:        true,
	}

	for _, from := range AllStates {
		for _, to := range AllStates {
			want := allowed[[2]State{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

// Self-transitions are not listed as edges and must be rejected, not
// treated as idempotent successes.
func TestSelfTransitionRejected(t *testing.T) {
	for _, s := range AllStates {
		if CanTransition(s, s) {
			t.Errorf("self-transition %s -> %s should be invalid", s, s)
		}
		err := ValidateTransition(s, s)
		if err == nil {
			t.Fatalf("ValidateTransition(%s, %s) returned nil error", s, s)
		}
		if !strings.Contains(err.Error(), "invalid state transition") {
			t.Errorf("unexpected error message: %v", err)
		}
	}
}

func TestValidateTransitionNamesBothStates(t *testing.T) {
	err := ValidateTransition(StateSent, StatePendingReview)
	if err == nil {
		t.Fatal("expected error for sent -> pending_review")
	}
	msg := err.Error()
	if !strings.Contains(msg, string(StateSent)) || !strings.Contains(msg, string(StatePendingReview)) {
		t.Errorf("error should name both states, got %q", msg)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range AllStates {
		want := s == StateSent
		if got := IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
	if IsTerminal(State("bogus")) {
		t.Error("unknown state must not be terminal")
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("pending_review"); err != nil {
		t.Fatalf("Parse(pending_review): %v", err)
	}
	if _, err := Parse("Pending_Review"); err == nil {
		t.Error("Parse should be case-sensitive")
	}
	if _, err := Parse(""); err == nil {
		t.Error("Parse of empty string should fail")
	}
}
