package statesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	first, unsubFirst := b.Subscribe(2)
	second, unsubSecond := b.Subscribe(2)
	defer unsubFirst()
	defer unsubSecond()

	b.Publish(StateReplaced{Seq: 1})

	assert.Equal(t, uint64(1), (<-first).Seq)
	assert.Equal(t, uint64(1), (<-second).Seq)
	assert.Equal(t, 2, b.SubscriberCount())
}

func TestBroadcaster_SlowSubscriberKeepsNewest(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe(1)
	defer unsubscribe()

	for seq := uint64(1); seq <= 5; seq++ {
		b.Publish(StateReplaced{Seq: seq})
	}

	require.Len(t, ch, 1)
	assert.Equal(t, uint64(5), (<-ch).Seq)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe(0)

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, b.SubscriberCount())

	b.Publish(StateReplaced{Seq: 1})
}
