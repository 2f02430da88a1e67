package weapon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/starship-console/go/internal/models"
)

var laser = models.Weapon{Name: "Laser", Duration: 10}

func TestLaserCountdown(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)

	halfway := start.Add(5000 * time.Millisecond)
	assert.False(t, IsExpired(laser, start, halfway))
	assert.InDelta(t, 0.5, RemainingFraction(laser, start, halfway), 1e-9)
	assert.InDelta(t, 5.0, RemainingSeconds(laser, start, halfway), 1e-9)
	assert.Equal(t, "5.0", FormatSeconds(RemainingSeconds(laser, start, halfway)))

	assert.True(t, IsExpired(laser, start, start.Add(11000*time.Millisecond)))
}

func TestRemainingFraction_Bounds(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, 1.0, RemainingFraction(laser, start, start))

	end := start.Add(10 * time.Second)
	assert.Equal(t, 0.0, RemainingFraction(laser, start, end))
	assert.False(t, IsExpired(laser, start, end), "expiry is strictly after the duration")
	assert.True(t, IsExpired(laser, start, end.Add(time.Millisecond)))

	prev := RemainingFraction(laser, start, start)
	for ms := 250; ms <= 10000; ms += 250 {
		cur := RemainingFraction(laser, start, start.Add(time.Duration(ms)*time.Millisecond))
		assert.Less(t, cur, prev, "at %dms", ms)
		prev = cur
	}

	assert.Less(t, RemainingFraction(laser, start, end.Add(time.Second)), 0.0)
}

func TestNonPositiveDuration(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)

	for _, d := range []float64{0, -5} {
		w := models.Weapon{Name: "Broken", Duration: d}
		assert.True(t, IsExpired(w, start, start))
		assert.Equal(t, 0.0, RemainingFraction(w, start, start))
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "9.9", FormatSeconds(9.94))
	assert.Equal(t, "0.0", FormatSeconds(0))
	assert.Equal(t, "1.5", FormatSeconds(1.5))
}

func TestStatusAt(t *testing.T) {
	startMillis := 1_700_000_000_000.0
	start := time.UnixMilli(1_700_000_000_000)
	state := &models.GameState{Weapon: &laser, WeaponStartTime: &startMillis}

	tests := []struct {
		name  string
		state *models.GameState
		now   time.Time
		want  Status
	}{
		{name: "no snapshot", state: nil, now: start, want: Offline()},
		{name: "no weapon", state: &models.GameState{}, now: start, want: Offline()},
		{name: "weapon without start time", state: &models.GameState{Weapon: &laser}, now: start, want: Offline()},
		{name: "expired", state: state, now: start.Add(11 * time.Second), want: Offline()},
		{
			name:  "active",
			state: state,
			now:   start.Add(2500 * time.Millisecond),
			want: Status{
				Active:            true,
				Name:              "Laser",
				FractionRemaining: 0.75,
				SecondsRemaining:  7.5,
				Display:           "7.5",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusAt(tt.state, tt.now))
		})
	}
}
