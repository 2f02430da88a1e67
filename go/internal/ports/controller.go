// Package ports turns operator interactions on a port into server commands.
package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/models"
	"github.com/mcdev12/starship-console/go/internal/statesync"
)

var (
	// ErrNoSnapshot is returned when no state has been received yet.
	ErrNoSnapshot = errors.New("no game state received yet")
	// ErrInvalidTarget is returned for a bay/port outside the live snapshot.
	ErrInvalidTarget = errors.New("invalid command target")
)

// Synchronizer is what the controller needs from statesync.
type Synchronizer interface {
	Snapshot() *models.GameState
	SendCommand(ctx context.Context, endpoint string) statesync.Outcome
}

type Controller struct {
	synchronizer Synchronizer
}

func NewController(synchronizer Synchronizer) *Controller {
	return &Controller{synchronizer: synchronizer}
}

// CycleWire moves the port to its next wire, or disconnects it after the last one.
// The live snapshot only changes once the server's response is applied.
func (c *Controller) CycleWire(ctx context.Context, bay, port int) (Command, statesync.Outcome, error) {
	p, err := c.lookup(bay, port)
	if err != nil {
		return Command{}, "", err
	}
	cmd := NextCommand(p.Wire, bay, port)
	return cmd, c.send(ctx, cmd), nil
}

// DisconnectWire unpatches the port whatever it currently holds.
func (c *Controller) DisconnectWire(ctx context.Context, bay, port int) (Command, statesync.Outcome, error) {
	if _, err := c.lookup(bay, port); err != nil {
		return Command{}, "", err
	}
	cmd := Disconnect(bay, port)
	return cmd, c.send(ctx, cmd), nil
}

// Execute sends a prepared command after checking its target.
func (c *Controller) Execute(ctx context.Context, cmd Command) (statesync.Outcome, error) {
	if _, err := c.lookup(cmd.Bay, cmd.Port); err != nil {
		return "", err
	}
	return c.send(ctx, cmd), nil
}

func (c *Controller) lookup(bay, port int) (models.Port, error) {
	state := c.synchronizer.Snapshot()
	if state == nil {
		return models.Port{}, ErrNoSnapshot
	}
	p, ok := state.PortAt(bay, port)
	if !ok {
		return models.Port{}, fmt.Errorf("%w: bay %d port %d", ErrInvalidTarget, bay, port)
	}
	return p, nil
}

func (c *Controller) send(ctx context.Context, cmd Command) statesync.Outcome {
	outcome := c.synchronizer.SendCommand(ctx, cmd.Endpoint())
	log.Debug().
		Str("action", string(cmd.Action)).
		Int("bay", cmd.Bay).
		Int("port", cmd.Port).
		Int("wire", int(cmd.Wire)).
		Str("outcome", string(outcome)).
		Msg("port command sent")
	return outcome
}
