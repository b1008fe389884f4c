package state

import (
	"context"
	"testing"

	gametypes "github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStateManager_CopiesOnSetAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryStateManager()

	s := gametypes.NewKitchenState()
	s.Pile = append(s.Pile, gametypes.Dish{Type: gametypes.DishTypePlate, ID: "a"})
	require.NoError(t, m.Set(ctx, s))

	// mutating the caller's copy must not leak into the stored state
	s.Pile[0].ID = "changed"

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Pile[0].ID)

	got.Cupboard = 42
	again, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Cupboard)
}

func TestInMemoryStateManager_SetNil(t *testing.T) {
	m := NewInMemoryStateManager()
	assert.Error(t, m.Set(context.Background(), nil))
}
