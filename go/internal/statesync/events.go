package statesync

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/models"
)

// Source says which kind of request produced a snapshot.
type Source string

const (
	SourcePoll    Source = "poll"
	SourceCommand Source = "command"
)

// StateReplaced is published after every applied snapshot. State is shared
// between subscribers and must be treated as read-only.
type StateReplaced struct {
	Seq       uint64
	Source    Source
	Path      string
	State     *models.GameState
	AppliedAt time.Time
}

// Broadcaster fans StateReplaced events out to subscribers. A subscriber that
// falls behind loses its oldest pending event, never the newest.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan StateReplaced
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan StateReplaced),
	}
}

// Subscribe registers a listener. Call the returned func to unsubscribe; it
// closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan StateReplaced, func()) {
	if buffer < 1 {
		buffer = 1
	}
	id := uuid.New().String()
	ch := make(chan StateReplaced, buffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	log.Debug().Str("subscription_id", id).Msg("state subscriber registered")

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			close(ch)
			b.mu.Unlock()
			log.Debug().Str("subscription_id", id).Msg("state subscriber removed")
		})
	}
}

// Publish never blocks.
func (b *Broadcaster) Publish(event StateReplaced) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
			continue
		default:
		}

		// Full: drop the oldest pending event to make room.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
			log.Warn().Str("subscription_id", id).Uint64("seq", event.Seq).Msg("subscriber buffer full, dropping event")
		}
	}
}

// SubscriberCount is used for stats.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
