package console

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/mcdev12/starship-console/go/internal/weapon"
)

// Renderer draws a View. Implementations must not retain or mutate it.
type Renderer interface {
	Render(view View) error
}

const weaponBarWidth = 40

// TextRenderer writes a plain-text frame whenever the frame text changes.
type TextRenderer struct {
	out  io.Writer
	mu   sync.Mutex
	last string
}

func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{out: out}
}

func (r *TextRenderer) Render(view View) error {
	frame := FormatView(view)

	r.mu.Lock()
	defer r.mu.Unlock()
	if frame == r.last {
		return nil
	}
	r.last = frame
	_, err := io.WriteString(r.out, frame)
	return err
}

// FormatView renders one frame of text.
func FormatView(view View) string {
	if view.Loading {
		return "loading\n"
	}

	var b strings.Builder
	b.WriteString(formatWeapon(view.Weapon))
	b.WriteByte('\n')

	fmt.Fprintf(&b, "SCORE %s", formatScore(view.Score))
	if view.GameOver {
		b.WriteString("  GAME OVER")
	}
	b.WriteByte('\n')

	for _, bay := range view.Bays {
		b.WriteString(bay.Name)
		b.WriteByte(':')
		for _, p := range bay.Ports {
			label := "-"
			if p.Wire != nil {
				label = fmt.Sprint(*p.Wire)
			}
			fmt.Fprintf(&b, " [%s %s %s]", label, p.Color, p.OnlineState)
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

func formatWeapon(status weapon.Status) string {
	if !status.Active {
		return status.Display
	}
	filled := int(math.Round(status.FractionRemaining * weaponBarWidth))
	filled = max(0, min(weaponBarWidth, filled))
	return fmt.Sprintf("%s [%s%s] %s",
		status.Name,
		strings.Repeat("#", filled),
		strings.Repeat("-", weaponBarWidth-filled),
		status.Display)
}

func formatScore(score float64) string {
	if score == math.Trunc(score) {
		return fmt.Sprintf("%.0f", score)
	}
	return fmt.Sprint(score)
}
