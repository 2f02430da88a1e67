// Package console renders the mirrored game state and feeds operator input
// back to the port controller.
package console

import (
	"fmt"
	"time"

	"github.com/mcdev12/starship-console/go/internal/models"
	"github.com/mcdev12/starship-console/go/internal/ports"
	"github.com/mcdev12/starship-console/go/internal/weapon"
	"github.com/mcdev12/starship-console/go/internal/wires"
)

const (
	OnlineState  = "online"
	OfflineState = "offline"
)

// PortView is everything a renderer needs for one port, including the
// commands bound to activating and resetting it.
type PortView struct {
	Bay         int           `json:"bay"`
	Port        int           `json:"port"`
	Wire        *int          `json:"wire"`
	Color       string        `json:"color"`
	OnlineState string        `json:"onlineState"`
	OnActivate  ports.Command `json:"onActivate"`
	OnReset     ports.Command `json:"onReset"`
}

type BayView struct {
	Name  string     `json:"name"`
	Ports []PortView `json:"ports"`
}

// View is a render-ready projection of one snapshot at one instant.
type View struct {
	Loading  bool          `json:"loading"`
	Bays     []BayView     `json:"bays"`
	Weapon   weapon.Status `json:"weapon"`
	GameOver bool          `json:"gameOver"`
	Score    float64       `json:"score"`
}

// BuildView projects state at now. A nil state yields the loading view.
func BuildView(state *models.GameState, palette wires.Palette, now time.Time) View {
	if state == nil {
		return View{Loading: true, Weapon: weapon.Offline()}
	}

	view := View{
		Bays:     make([]BayView, len(state.Bays)),
		Weapon:   weapon.StatusAt(state, now),
		GameOver: state.GameOver,
		Score:    state.Score,
	}

	for bayNum, bay := range state.Bays {
		bv := BayView{
			Name:  fmt.Sprintf("Bay %d", bayNum),
			Ports: make([]PortView, len(bay)),
		}
		for portNum, p := range bay {
			onlineState := OfflineState
			if p.IsOnline {
				onlineState = OnlineState
			}
			var wire *int
			if p.Wire != nil {
				w := *p.Wire
				wire = &w
			}
			bv.Ports[portNum] = PortView{
				Bay:         bayNum,
				Port:        portNum,
				Wire:        wire,
				Color:       palette.Color(p.Wire),
				OnlineState: onlineState,
				OnActivate:  ports.NextCommand(p.Wire, bayNum, portNum),
				OnReset:     ports.Disconnect(bayNum, portNum),
			}
		}
		view.Bays[bayNum] = bv
	}

	return view
}
