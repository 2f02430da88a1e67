// Package weapon computes the countdown of the active weapon from its start
// time and duration. All functions are pure; callers supply "now".
package weapon

import (
	"strconv"
	"time"

	"github.com/mcdev12/starship-console/go/internal/models"
)

// OfflineLabel is shown whenever no countdown is running.
const OfflineLabel = "WEAPON OFFLINE"

func elapsedMillis(start, now time.Time) float64 {
	return float64(now.Sub(start)) / float64(time.Millisecond)
}

func durationMillis(w models.Weapon) float64 {
	return w.Duration * 1000
}

// IsExpired reports whether the countdown has run out. A non-positive
// duration is always expired.
func IsExpired(w models.Weapon, start, now time.Time) bool {
	total := durationMillis(w)
	if total <= 0 {
		return true
	}
	return elapsedMillis(start, now) > total
}

// RemainingFraction is 1 at start and 0 when the duration has elapsed. It goes
// negative past expiry; check IsExpired first.
func RemainingFraction(w models.Weapon, start, now time.Time) float64 {
	total := durationMillis(w)
	if total <= 0 {
		return 0
	}
	return 1 - elapsedMillis(start, now)/total
}

// RemainingSeconds is the time left on the countdown in seconds.
func RemainingSeconds(w models.Weapon, start, now time.Time) float64 {
	return (durationMillis(w) - elapsedMillis(start, now)) / 1000
}

// FormatSeconds renders seconds with one decimal digit.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 1, 64)
}

// Status is the weapon display consumed by renderers.
type Status struct {
	Active            bool    `json:"active"`
	Name              string  `json:"name,omitempty"`
	FractionRemaining float64 `json:"fractionRemaining"`
	SecondsRemaining  float64 `json:"secondsRemaining"`
	Display           string  `json:"display"`
}

// Offline is the inactive marker.
func Offline() Status {
	return Status{Display: OfflineLabel}
}

// StatusAt derives the weapon display for state at time now.
func StatusAt(state *models.GameState, now time.Time) Status {
	activation, ok := state.Activation()
	if !ok || IsExpired(activation.Weapon, activation.StartTime, now) {
		return Offline()
	}

	seconds := RemainingSeconds(activation.Weapon, activation.StartTime, now)
	return Status{
		Active:            true,
		Name:              activation.Weapon.Name,
		FractionRemaining: RemainingFraction(activation.Weapon, activation.StartTime, now),
		SecondsRemaining:  seconds,
		Display:           FormatSeconds(seconds),
	}
}
