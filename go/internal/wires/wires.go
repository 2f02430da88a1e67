// Package wires defines the fixed set of patch-cable identifiers a port can hold.
package wires

// Index identifies one of the Count wires.
type Index int

// Count is the number of wires in the set.
const Count = 4

// None is the color name of an unpatched port.
const None = "none"

// Valid reports whether w is inside [0, Count).
func (w Index) Valid() bool {
	return w >= 0 && w < Count
}

// Successor returns the wire after w. ok is false when w is the last wire
// (or not a valid wire at all), in which case the caller disconnects instead.
func Successor(w Index) (next Index, ok bool) {
	if !w.Valid() || !(w + 1).Valid() {
		return 0, false
	}
	return w + 1, true
}

// Palette maps each wire to a display color.
type Palette [Count]string

// DefaultPalette is the physical cable set of the console.
var DefaultPalette = Palette{"black", "white", "blue", "pink"}

// Color returns the color for a port's wire, None when unpatched and
// "unknown" when the server reports an index outside the set.
func (p Palette) Color(wire *int) string {
	if wire == nil {
		return None
	}
	if !Index(*wire).Valid() {
		return "unknown"
	}
	return p[*wire]
}
