package console

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/starship-console/go/internal/models"
	"github.com/mcdev12/starship-console/go/internal/statesync"
	"github.com/mcdev12/starship-console/go/internal/wires"
)

type fakeSource struct {
	snapshot    *models.GameState
	broadcaster *statesync.Broadcaster
}

func (f *fakeSource) Snapshot() *models.GameState { return f.snapshot.Clone() }

func (f *fakeSource) Subscribe(buffer int) (<-chan statesync.StateReplaced, func()) {
	return f.broadcaster.Subscribe(buffer)
}

type recordingRenderer struct {
	views chan View
}

func (r *recordingRenderer) Render(view View) error {
	r.views <- view
	return nil
}

func (r *recordingRenderer) next(t *testing.T) View {
	t.Helper()
	select {
	case v := <-r.views:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no view rendered")
		return View{}
	}
}

// waitFor skips views until one matches; a fake clock advance can deliver
// several refresh ticks at once.
func (r *recordingRenderer) waitFor(t *testing.T, match func(View) bool) View {
	t.Helper()
	for {
		if v := r.next(t); match(v) {
			return v
		}
	}
}

func TestPresenter_RendersEventsAndCountdown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	source := &fakeSource{broadcaster: statesync.NewBroadcaster()}
	renderer := &recordingRenderer{views: make(chan View, 16)}
	presenter := NewPresenter(source, wires.DefaultPalette, clock, renderer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- presenter.Run(ctx) }()

	assert.True(t, renderer.next(t).Loading)

	require.Eventually(t, func() bool { return source.broadcaster.SubscriberCount() == 1 }, time.Second, time.Millisecond)
	source.broadcaster.Publish(statesync.StateReplaced{Seq: 1, State: sampleState(clock.Now())})

	view := renderer.next(t)
	require.True(t, view.Weapon.Active)
	assert.Equal(t, "10.0", view.Weapon.Display)

	blockCtx, blockCancel := context.WithTimeout(context.Background(), time.Second)
	defer blockCancel()
	require.NoError(t, clock.BlockUntilContext(blockCtx, 1))

	clock.Advance(5 * time.Second)
	view = renderer.waitFor(t, func(v View) bool { return v.Weapon.Display != "10.0" })
	assert.Equal(t, "5.0", view.Weapon.Display)

	clock.Advance(6 * time.Second)
	view = renderer.waitFor(t, func(v View) bool { return !v.Weapon.Active })
	assert.Equal(t, "WEAPON OFFLINE", view.Weapon.Display)

	clock.Advance(DefaultRefreshInterval)
	select {
	case v := <-renderer.views:
		t.Fatalf("unexpected render after expiry: %+v", v.Weapon)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-done)
	assert.Zero(t, source.broadcaster.SubscriberCount())
}
