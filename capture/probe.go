package capture

import (
	"fmt"
	"log/slog"
	"time"
)

// heightQueryRetries bounds the local retry of individual height reads.
// Height queries are occasionally flaky on a busy renderer; anything
// beyond this propagates to the caller.
const heightQueryRetries = 3

// heightMetrics are the redundant document height sources. Any single
// metric can under-report because of CSS quirks (overflow clamping,
// collapsed bodies), so a read takes the maximum of all six.
var heightMetrics = []string{
	`() => document.body.scrollHeight`,
	`() => document.body.clientHeight`,
	`() => document.body.offsetHeight`,
	`() => document.documentElement.scrollHeight`,
	`() => document.documentElement.clientHeight`,
	`() => document.documentElement.offsetHeight`,
}

// ProbeOptions configures the height stabilization loop.
type ProbeOptions struct {
	// InitialGuess seeds the first comparison baseline. When zero, the
	// baseline comes from a fresh read instead.
	InitialGuess int

	// SettleDelay is the pause between the scroll and the re-read,
	// allowing reflow and lazy-loading to finish.
	SettleDelay time.Duration

	// MaxIterations bounds the loop. Exhaustion is not an error: the
	// last candidate is returned best-effort.
	MaxIterations int

	// FallbackHeight substitutes for a zero result (every metric on a
	// broken page can legitimately read zero).
	FallbackHeight int
}

// StabilizeHeight converges on the page's true rendered height.
//
// Each iteration scrolls the viewport to the current candidate height
// (which itself triggers lazy content), waits, and re-reads. Two equal
// consecutive readings are accepted as stable. If the loop exhausts
// MaxIterations the last candidate is returned, not the fallback; only
// a zero result falls back to FallbackHeight. Session failures
// propagate rather than silently returning zero.
func StabilizeHeight(s Session, opts ProbeOptions) (int, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 10
	}

	candidate := opts.InitialGuess
	if candidate <= 0 {
		h, err := readPageHeight(s)
		if err != nil {
			return 0, err
		}
		candidate = h
	}

	for i := 0; i < opts.MaxIterations; i++ {
		if err := scrollTo(s, 0, candidate); err != nil {
			return 0, err
		}
		s.Sleep(opts.SettleDelay)

		next, err := readPageHeight(s)
		if err != nil {
			return 0, err
		}
		if next == candidate {
			slog.Debug("page height stabilized", "height", next, "iterations", i+1)
			if next == 0 {
				return opts.FallbackHeight, nil
			}
			return next, nil
		}
		candidate = next
	}

	// Convergence exhausted: best-effort, never an error.
	slog.Debug("height probe exhausted iterations, using last candidate",
		"candidate", candidate, "iterations", opts.MaxIterations)
	if candidate == 0 {
		return opts.FallbackHeight, nil
	}
	return candidate, nil
}

// readPageHeight reads all redundant height metrics and returns the maximum.
func readPageHeight(s Session) (int, error) {
	max := 0
	for _, js := range heightMetrics {
		v, err := evalIntRetry(s, js)
		if err != nil {
			return 0, err
		}
		if v > max {
			max = v
		}
	}
	return max, nil
}

// evalIntRetry evaluates a JS expression expected to produce an integer,
// retrying transient failures a bounded number of times.
func evalIntRetry(s Session, js string) (int, error) {
	var lastErr error
	for attempt := 0; attempt < heightQueryRetries; attempt++ {
		res, err := s.Evaluate(js)
		if err == nil {
			return res.Int(), nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("evaluate %q failed after %d attempts: %w", js, heightQueryRetries, lastErr)
}
