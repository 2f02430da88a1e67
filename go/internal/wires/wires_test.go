package wires

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessor(t *testing.T) {
	for w := Index(0); w < Count-1; w++ {
		next, ok := Successor(w)
		assert.True(t, ok, "wire %d", w)
		assert.Equal(t, w+1, next)
	}

	_, ok := Successor(Count - 1)
	assert.False(t, ok, "last wire must overflow")
}

func TestSuccessor_InvalidInput(t *testing.T) {
	for _, w := range []Index{-1, Count, Count + 3} {
		_, ok := Successor(w)
		assert.False(t, ok, "wire %d", w)
	}
}

func TestPalette_Color(t *testing.T) {
	wire := func(v int) *int { return &v }

	tests := []struct {
		name string
		wire *int
		want string
	}{
		{name: "unpatched", wire: nil, want: None},
		{name: "first", wire: wire(0), want: "black"},
		{name: "last", wire: wire(3), want: "pink"},
		{name: "out of range", wire: wire(4), want: "unknown"},
		{name: "negative", wire: wire(-1), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPalette.Color(tt.wire))
		})
	}
}
