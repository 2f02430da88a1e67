package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/ports"
	"github.com/mcdev12/starship-console/go/internal/statesync"
)

// Operator actions accepted from the text console and the dashboard.
const (
	OperatorCycle = "cycle"
	OperatorReset = "reset"
)

var errUsage = errors.New("usage: cycle <bay> <port> | reset <bay> <port>")

// PortActions is the port controller surface used by operator input.
type PortActions interface {
	CycleWire(ctx context.Context, bay, port int) (ports.Command, statesync.Outcome, error)
	DisconnectWire(ctx context.Context, bay, port int) (ports.Command, statesync.Outcome, error)
}

// OperatorRequest is one parsed operator action.
type OperatorRequest struct {
	Action string `json:"action"`
	Bay    int    `json:"bay"`
	Port   int    `json:"port"`
}

// ParseOperatorLine parses "cycle <bay> <port>" or "reset <bay> <port>".
func ParseOperatorLine(line string) (OperatorRequest, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return OperatorRequest{}, errUsage
	}
	bay, err := strconv.Atoi(fields[1])
	if err != nil {
		return OperatorRequest{}, fmt.Errorf("bad bay %q: %w", fields[1], errUsage)
	}
	port, err := strconv.Atoi(fields[2])
	if err != nil {
		return OperatorRequest{}, fmt.Errorf("bad port %q: %w", fields[2], errUsage)
	}
	req := OperatorRequest{Action: strings.ToLower(fields[0]), Bay: bay, Port: port}
	if req.Action != OperatorCycle && req.Action != OperatorReset {
		return OperatorRequest{}, errUsage
	}
	return req, nil
}

// Dispatch runs an operator request against the controller.
func Dispatch(ctx context.Context, actions PortActions, req OperatorRequest) (ports.Command, statesync.Outcome, error) {
	switch req.Action {
	case OperatorCycle:
		return actions.CycleWire(ctx, req.Bay, req.Port)
	case OperatorReset:
		return actions.DisconnectWire(ctx, req.Bay, req.Port)
	default:
		return ports.Command{}, "", fmt.Errorf("unknown action %q: %w", req.Action, errUsage)
	}
}

// ReadOperatorInput dispatches each line of r until EOF or ctx is done.
func ReadOperatorInput(ctx context.Context, r io.Reader, actions PortActions) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		req, err := ParseOperatorLine(line)
		if err != nil {
			log.Warn().Err(err).Str("line", line).Msg("ignoring operator input")
			continue
		}

		cmd, outcome, err := Dispatch(ctx, actions, req)
		if err != nil {
			log.Warn().Err(err).Str("line", line).Msg("operator command rejected")
			continue
		}
		log.Info().Str("command", cmd.String()).Str("outcome", string(outcome)).Msg("operator command")
	}
	return scanner.Err()
}
