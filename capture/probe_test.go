package capture

import (
	"errors"
	"testing"
)

func TestStabilizeHeight_Converges(t *testing.T) {
	s := &fakeSession{heights: []int{5000, 6200, 6200}}

	h, err := StabilizeHeight(s, ProbeOptions{
		MaxIterations:  10,
		FallbackHeight: 22000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 6200 {
		t.Errorf("stabilized height = %d, want 6200", h)
	}
}

func TestStabilizeHeight_ImmediateStability(t *testing.T) {
	s := &fakeSession{heights: []int{3000, 3000}}

	h, err := StabilizeHeight(s, ProbeOptions{MaxIterations: 10, FallbackHeight: 22000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 3000 {
		t.Errorf("stabilized height = %d, want 3000", h)
	}
	// One initial read plus one confirming read.
	if got := s.metricCalls / len(heightMetrics); got != 2 {
		t.Errorf("page height read %d times, want 2", got)
	}
}

func TestStabilizeHeight_AllZeroUsesFallback(t *testing.T) {
	s := &fakeSession{heights: []int{0, 0, 0}}

	h, err := StabilizeHeight(s, ProbeOptions{MaxIterations: 10, FallbackHeight: 22000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 22000 {
		t.Errorf("stabilized height = %d, want fallback 22000", h)
	}
}

func TestStabilizeHeight_ExhaustionReturnsLastCandidate(t *testing.T) {
	// Heights keep growing, never stabilizing within the budget.
	s := &fakeSession{heights: []int{1000, 2000, 3000, 4000, 5000, 6000, 7000}}

	h, err := StabilizeHeight(s, ProbeOptions{MaxIterations: 3, FallbackHeight: 22000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Initial read 1000, then three iterations read 2000, 3000, 4000.
	// Exhaustion returns the last candidate, never the fallback.
	if h != 4000 {
		t.Errorf("stabilized height = %d, want last candidate 4000", h)
	}
}

func TestStabilizeHeight_InitialGuessSeedsBaseline(t *testing.T) {
	// The first reading matches the guess, so the probe converges
	// without a second read.
	s := &fakeSession{heights: []int{8000}}

	h, err := StabilizeHeight(s, ProbeOptions{
		InitialGuess:   8000,
		MaxIterations:  10,
		FallbackHeight: 22000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 8000 {
		t.Errorf("stabilized height = %d, want 8000", h)
	}
	if got := s.metricCalls / len(heightMetrics); got != 1 {
		t.Errorf("page height read %d times, want 1", got)
	}
}

func TestStabilizeHeight_SessionErrorPropagates(t *testing.T) {
	sessionErr := errors.New("websocket closed")
	s := &fakeSession{heights: []int{1000}, evalErr: sessionErr}

	_, err := StabilizeHeight(s, ProbeOptions{MaxIterations: 10, FallbackHeight: 22000})
	if err == nil {
		t.Fatal("expected error for unreachable session, got nil")
	}
	if !errors.Is(err, sessionErr) {
		t.Errorf("error %v does not wrap the session error", err)
	}
}

func TestStabilizeHeight_ScrollsToCandidate(t *testing.T) {
	s := &fakeSession{heights: []int{5000, 5000}}

	if _, err := StabilizeHeight(s, ProbeOptions{MaxIterations: 10, FallbackHeight: 22000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.scrolls) == 0 {
		t.Fatal("probe never scrolled")
	}
	want := "() => window.scrollTo(0, 5000)"
	if s.scrolls[0] != want {
		t.Errorf("first scroll = %q, want %q", s.scrolls[0], want)
	}
}
