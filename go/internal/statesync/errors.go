package statesync

import "errors"

var (
	// ErrTransport covers unreachable servers and non-2xx responses.
	ErrTransport = errors.New("transport failure")
	// ErrTimeout is returned when a request loses the race against the request timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrMalformedResponse is returned when the body is not a game state document.
	ErrMalformedResponse = errors.New("malformed response")
)

// Outcome is the terminal result of one synchronization request.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeStale     Outcome = "stale"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)
