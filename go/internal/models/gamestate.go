package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Port is a single patchable connection point inside a bay.
type Port struct {
	Wire     *int `json:"wire"`     // nil when unpatched
	IsOnline bool `json:"isOnline"` // set by the server only
}

// Bay is an ordered, index-addressed group of ports.
type Bay []Port

// Weapon is the subsystem armed by the server. Duration is in seconds.
type Weapon struct {
	Name     string          `json:"name"`
	Sequence json.RawMessage `json:"sequence,omitempty"`
	Duration float64         `json:"duration"`
}

// WeaponActivation is a countdown anchored at StartTime.
type WeaponActivation struct {
	Weapon    Weapon
	StartTime time.Time
}

// GameState is the full snapshot returned by the server.
// Fields the client does not understand are kept in Extra and written back on encode.
type GameState struct {
	Bays            []Bay    `json:"bays"`
	Weapon          *Weapon  `json:"weapon"`
	WeaponStartTime *float64 `json:"weaponStartTime"` // unix milliseconds, possibly fractional
	GameOver        bool     `json:"gameOver"`
	Score           float64  `json:"score"`

	Extra map[string]json.RawMessage `json:"-"`
}

var errEmptyState = errors.New("empty game state")

var knownStateFields = []string{"bays", "weapon", "weaponStartTime", "gameOver", "score"}

// gameStateFields has GameState's layout without its methods.
type gameStateFields GameState

func (s *GameState) UnmarshalJSON(data []byte) error {
	var fields gameStateFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownStateFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		fields.Extra = raw
	}

	*s = GameState(fields)
	return nil
}

func (s GameState) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(gameStateFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(s.Extra)+len(knownStateFields))
	for key, value := range s.Extra {
		merged[key] = value
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for key, value := range knownMap {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// DecodeGameState parses a server response body.
func DecodeGameState(body []byte) (*GameState, error) {
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errEmptyState
	}
	var state GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &state, nil
}

// Activation returns the active weapon countdown. Both the weapon and its
// start time must be present.
func (s *GameState) Activation() (WeaponActivation, bool) {
	if s == nil || s.Weapon == nil || s.WeaponStartTime == nil {
		return WeaponActivation{}, false
	}
	return WeaponActivation{
		Weapon:    *s.Weapon,
		StartTime: time.UnixMicro(int64(math.Round(*s.WeaponStartTime * 1000))),
	}, true
}

// PortAt returns the port at (bay, port), or false when either index is out of range.
func (s *GameState) PortAt(bay, port int) (Port, bool) {
	if s == nil || bay < 0 || bay >= len(s.Bays) {
		return Port{}, false
	}
	ports := s.Bays[bay]
	if port < 0 || port >= len(ports) {
		return Port{}, false
	}
	return ports[port], true
}

// Clone returns a deep copy.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		GameOver: s.GameOver,
		Score:    s.Score,
	}

	if s.Bays != nil {
		out.Bays = make([]Bay, len(s.Bays))
		for i, bay := range s.Bays {
			if bay == nil {
				continue
			}
			ports := make(Bay, len(bay))
			for j, p := range bay {
				ports[j] = Port{IsOnline: p.IsOnline}
				if p.Wire != nil {
					wire := *p.Wire
					ports[j].Wire = &wire
				}
			}
			out.Bays[i] = ports
		}
	}

	if s.Weapon != nil {
		w := *s.Weapon
		w.Sequence = cloneRaw(s.Weapon.Sequence)
		out.Weapon = &w
	}
	if s.WeaponStartTime != nil {
		start := *s.WeaponStartTime
		out.WeaponStartTime = &start
	}

	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for key, value := range s.Extra {
			out.Extra[key] = cloneRaw(value)
		}
	}

	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
