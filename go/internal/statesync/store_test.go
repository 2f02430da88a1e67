package statesync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/starship-console/go/internal/models"
)

func TestStore_ApplyOnlyNewer(t *testing.T) {
	store := NewStore()
	assert.Nil(t, store.Snapshot())

	assert.True(t, store.apply(2, &models.GameState{Score: 2}))
	assert.False(t, store.apply(1, &models.GameState{Score: 1}))
	assert.False(t, store.apply(2, &models.GameState{Score: 3}))

	assert.Equal(t, 2.0, store.Snapshot().Score)
	assert.Equal(t, uint64(2), store.Seq())

	assert.True(t, store.apply(3, &models.GameState{Score: 3}))
	assert.Equal(t, 3.0, store.Snapshot().Score)
}
