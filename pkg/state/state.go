package state

import (
	"context"

	gametypes "github.com/cbodonnell/dirtydishes/pkg/game/types"
)

// StateManager provides shared access to the latest kitchen state published
// by a game loop. Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current kitchen state.
	Get(ctx context.Context) (*gametypes.KitchenState, error)
	// Set sets the current kitchen state.
	Set(ctx context.Context, kitchenState *gametypes.KitchenState) error
}
