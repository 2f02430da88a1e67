package ports

import (
	"fmt"

	"github.com/mcdev12/starship-console/go/clients/starship_client"
	"github.com/mcdev12/starship-console/go/internal/wires"
)

// Action is the kind of request a port interaction sends.
type Action string

const (
	ActionConnect    Action = "connect"
	ActionDisconnect Action = "disconnect"
)

// Command is a request targeting one port. Wire is only meaningful for connect.
type Command struct {
	Action Action      `json:"action"`
	Wire   wires.Index `json:"wire"`
	Port   int         `json:"port"`
	Bay    int         `json:"bay"`
}

// Endpoint is the server path encoding the command.
func (c Command) Endpoint() string {
	if c.Action == ActionConnect {
		return starship_client.ConnectEndpoint(int(c.Wire), c.Port, c.Bay)
	}
	return starship_client.DisconnectEndpoint(c.Port, c.Bay)
}

func (c Command) String() string {
	if c.Action == ActionConnect {
		return fmt.Sprintf("connect wire %d to bay %d port %d", c.Wire, c.Bay, c.Port)
	}
	return fmt.Sprintf("disconnect bay %d port %d", c.Bay, c.Port)
}

// Disconnect unpatches (bay, port).
func Disconnect(bay, port int) Command {
	return Command{Action: ActionDisconnect, Bay: bay, Port: port}
}

// NextCommand decides what cycling a port sends:
// unpatched -> wire 0, last wire -> disconnect, otherwise the next wire.
func NextCommand(current *int, bay, port int) Command {
	if current == nil {
		return Command{Action: ActionConnect, Wire: 0, Bay: bay, Port: port}
	}
	next, ok := wires.Successor(wires.Index(*current))
	if !ok {
		return Disconnect(bay, port)
	}
	return Command{Action: ActionConnect, Wire: next, Bay: bay, Port: port}
}
