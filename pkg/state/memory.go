package state

import (
	"context"
	"fmt"
	"sync"

	gametypes "github.com/cbodonnell/dirtydishes/pkg/game/types"
)

type InMemoryStateManager struct {
	lock         sync.RWMutex
	kitchenState *gametypes.KitchenState
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		kitchenState: gametypes.NewKitchenState(),
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*gametypes.KitchenState, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.kitchenState.Copy(), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, kitchenState *gametypes.KitchenState) error {
	if kitchenState == nil {
		return fmt.Errorf("kitchen state is nil")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.kitchenState = kitchenState.Copy()
	return nil
}
