// Package statesync mirrors the server's game state. Every request races a
// fixed wall-clock timeout, and a response is only applied when no newer
// request has been applied before it.
package statesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/models"
)

// Transport performs the raw requests against the game server.
type Transport interface {
	FetchState(ctx context.Context) ([]byte, error)
	SendCommand(ctx context.Context, endpoint string) ([]byte, error)
}

// Config holds the synchronization cadence.
type Config struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns the cadence the console hardware was tuned for.
func DefaultConfig() Config {
	return Config{
		PollInterval:   100 * time.Millisecond,
		RequestTimeout: 1500 * time.Millisecond,
	}
}

// Stats counts request outcomes since start.
type Stats struct {
	Issued      uint64 `json:"issued"`
	Applied     uint64 `json:"applied"`
	Stale       uint64 `json:"stale"`
	Failed      uint64 `json:"failed"`
	LastSeq     uint64 `json:"last_applied_seq"`
	HasState    bool   `json:"has_state"`
	InFlight    int64  `json:"in_flight"`
	Subscribers int    `json:"subscribers"`
}

type Synchronizer struct {
	transport   Transport
	store       *Store
	broadcaster *Broadcaster
	config      Config
	clock       clockwork.Clock
	logger      zerolog.Logger

	// applyMu keeps apply and publish in sequence order.
	applyMu sync.Mutex
	nextSeq atomic.Uint64

	inFlight atomic.Int64
	applied  atomic.Uint64
	stale    atomic.Uint64
	failed   atomic.Uint64
}

// NewSynchronizer creates a synchronizer with an empty store.
func NewSynchronizer(transport Transport, config Config) *Synchronizer {
	return &Synchronizer{
		transport:   transport,
		store:       NewStore(),
		broadcaster: NewBroadcaster(),
		config:      config,
		clock:       clockwork.NewRealClock(),
		logger:      log.Logger,
	}
}

// WithClock swaps the clock used for the request timeout and poll ticker.
func (s *Synchronizer) WithClock(clock clockwork.Clock) *Synchronizer {
	s.clock = clock
	return s
}

// WithLogger swaps the logger used for failures.
func (s *Synchronizer) WithLogger(logger zerolog.Logger) *Synchronizer {
	s.logger = logger
	return s
}

// Snapshot returns a read-only copy of the live state, nil until the first success.
func (s *Synchronizer) Snapshot() *models.GameState {
	return s.store.Snapshot()
}

// Subscribe registers a listener for StateReplaced events.
func (s *Synchronizer) Subscribe(buffer int) (<-chan StateReplaced, func()) {
	return s.broadcaster.Subscribe(buffer)
}

func (s *Synchronizer) Clock() clockwork.Clock {
	return s.clock
}

func (s *Synchronizer) Stats() Stats {
	return Stats{
		Issued:      s.nextSeq.Load(),
		Applied:     s.applied.Load(),
		Stale:       s.stale.Load(),
		Failed:      s.failed.Load(),
		LastSeq:     s.store.Seq(),
		HasState:    s.store.Seq() > 0,
		InFlight:    s.inFlight.Load(),
		Subscribers: s.broadcaster.SubscriberCount(),
	}
}

// Poll fetches the state resource and applies it. Failures are logged, never returned.
func (s *Synchronizer) Poll(ctx context.Context) Outcome {
	return s.request(ctx, SourcePoll, "/state", s.transport.FetchState)
}

// SendCommand issues a connect/disconnect request and applies the state it returns.
func (s *Synchronizer) SendCommand(ctx context.Context, endpoint string) Outcome {
	return s.request(ctx, SourceCommand, endpoint, func(ctx context.Context) ([]byte, error) {
		return s.transport.SendCommand(ctx, endpoint)
	})
}

// Run polls immediately, then once per PollInterval until ctx is done.
// Polls may overlap; the sequence check keeps late responses out.
func (s *Synchronizer) Run(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.PollInterval).
		Dur("timeout", s.config.RequestTimeout).
		Msg("state synchronizer started")

	var wg sync.WaitGroup
	poll := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Poll(ctx)
		}()
	}

	ticker := s.clock.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	poll()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.logger.Info().Msg("state synchronizer stopped")
			return nil
		case <-ticker.Chan():
			poll()
		}
	}
}

type fetchResult struct {
	body []byte
	err  error
}

func (s *Synchronizer) request(parent context.Context, source Source, path string, fetch func(context.Context) ([]byte, error)) Outcome {
	seq := s.nextSeq.Add(1)
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Buffered so a request that loses the race can still finish and exit.
	resultCh := make(chan fetchResult, 1)
	go func() {
		body, err := fetch(ctx)
		resultCh <- fetchResult{body: body, err: err}
	}()

	timer := s.clock.NewTimer(s.config.RequestTimeout)
	defer timer.Stop()

	var res fetchResult
	select {
	case res = <-resultCh:
	case <-timer.Chan():
		s.fail(seq, source, path, fmt.Errorf("%w after %s", ErrTimeout, s.config.RequestTimeout))
		return OutcomeFailed
	case <-parent.Done():
		s.logger.Debug().Uint64("seq", seq).Str("path", path).Msg("request abandoned on shutdown")
		return OutcomeCancelled
	}

	if res.err != nil {
		if errors.Is(res.err, context.Canceled) && parent.Err() != nil {
			return OutcomeCancelled
		}
		s.fail(seq, source, path, fmt.Errorf("%w: %w", ErrTransport, res.err))
		return OutcomeFailed
	}

	state, err := models.DecodeGameState(res.body)
	if err != nil {
		s.fail(seq, source, path, fmt.Errorf("%w: %w", ErrMalformedResponse, err))
		return OutcomeFailed
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if !s.store.apply(seq, state) {
		s.stale.Add(1)
		s.logger.Debug().
			Uint64("seq", seq).
			Uint64("live_seq", s.store.Seq()).
			Str("source", string(source)).
			Str("path", path).
			Msg("discarding stale response")
		return OutcomeStale
	}

	s.applied.Add(1)
	s.broadcaster.Publish(StateReplaced{
		Seq:       seq,
		Source:    source,
		Path:      path,
		State:     state.Clone(),
		AppliedAt: s.clock.Now(),
	})
	return OutcomeApplied
}

func (s *Synchronizer) fail(seq uint64, source Source, path string, err error) {
	s.failed.Add(1)
	s.logger.Error().
		Err(err).
		Uint64("seq", seq).
		Str("source", string(source)).
		Str("path", path).
		Msg("state synchronization failed")
}
