package console

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/models"
	"github.com/mcdev12/starship-console/go/internal/statesync"
	"github.com/mcdev12/starship-console/go/internal/wires"
)

// StateSource is the read side of the synchronizer.
type StateSource interface {
	Snapshot() *models.GameState
	Subscribe(buffer int) (<-chan statesync.StateReplaced, func())
}

// DefaultRefreshInterval drives the weapon countdown between state events.
const DefaultRefreshInterval = 100 * time.Millisecond

// Presenter re-renders on every StateReplaced event, and on a refresh tick
// while a weapon countdown is running.
type Presenter struct {
	source    StateSource
	palette   wires.Palette
	renderers []Renderer
	clock     clockwork.Clock
	refresh   time.Duration
}

func NewPresenter(source StateSource, palette wires.Palette, clock clockwork.Clock, renderers ...Renderer) *Presenter {
	return &Presenter{
		source:    source,
		palette:   palette,
		renderers: renderers,
		clock:     clock,
		refresh:   DefaultRefreshInterval,
	}
}

func (p *Presenter) Run(ctx context.Context) error {
	events, unsubscribe := p.source.Subscribe(1)
	defer unsubscribe()

	ticker := p.clock.NewTicker(p.refresh)
	defer ticker.Stop()

	state := p.source.Snapshot()
	view := p.render(state)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			state = ev.State
			view = p.render(state)
		case <-ticker.Chan():
			// Re-render once more after expiry so the display drops to offline.
			if view.Weapon.Active {
				view = p.render(state)
			}
		}
	}
}

func (p *Presenter) render(state *models.GameState) View {
	view := BuildView(state, p.palette, p.clock.Now())
	for _, r := range p.renderers {
		if err := r.Render(view); err != nil {
			log.Error().Err(err).Msg("failed to render view")
		}
	}
	return view
}
