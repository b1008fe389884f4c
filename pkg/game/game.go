package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/clock"
	"github.com/cbodonnell/dirtydishes/pkg/game/constants"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/cbodonnell/dirtydishes/pkg/queue"
	"github.com/cbodonnell/dirtydishes/pkg/state"
	"github.com/cbodonnell/dirtydishes/pkg/workers"
)

// ErrKitchenClosed is returned by Dispatch once the kitchen loop has stopped.
var ErrKitchenClosed = errors.New("kitchen is closed")

// Settings are the tunables of a kitchen.
type Settings struct {
	SpawnBaseDelay time.Duration
	WashTime       time.Duration
	NoticeDelay    time.Duration
	InitialDishes  int
	Rules          types.Rules
}

func DefaultSettings() Settings {
	return Settings{
		SpawnBaseDelay: constants.SpawnBaseDelay,
		WashTime:       constants.WashTime,
		NoticeDelay:    constants.NoticeDelay,
		InitialDishes:  constants.InitialDishes,
		Rules:          types.Rules{RackCapacity: constants.RackCapacity},
	}
}

// KitchenManager owns the kitchen of one session. Every transition, whether
// requested by the player or fired by a timer, is applied by the loop
// goroutine, so transitions never interleave.
type KitchenManager struct {
	sessionID         string
	clock             clock.Clock
	actionQueue       queue.Queue
	timerEventQueue   queue.Queue
	stateManager      state.StateManager
	serverMessageChan chan<- workers.ServerMessage
	gameLoopInterval  time.Duration
	settings          Settings
	rng               *rand.Rand
	logger            *log.Logger

	// owned by the loop goroutine
	kitchenState *types.KitchenState
	dirty        bool
	spawnTimer   clock.Timer
	spawnGen     uint64
	washTimer    clock.Timer
	washGen      uint64
	noticeTimer  clock.Timer

	done chan struct{}
}

// NewKitchenManagerOptions contains options for creating a new KitchenManager.
type NewKitchenManagerOptions struct {
	SessionID       string
	Clock           clock.Clock
	ActionQueue     queue.Queue
	TimerEventQueue queue.Queue
	StateManager    state.StateManager
	// ServerMessageChan receives a kitchen update after every change. Optional.
	ServerMessageChan chan<- workers.ServerMessage
	GameLoopInterval  time.Duration
	Settings          Settings
	Rand              *rand.Rand
}

func NewKitchenManager(opts NewKitchenManagerOptions) *KitchenManager {
	km := &KitchenManager{
		sessionID:         opts.SessionID,
		clock:             opts.Clock,
		actionQueue:       opts.ActionQueue,
		timerEventQueue:   opts.TimerEventQueue,
		stateManager:      opts.StateManager,
		serverMessageChan: opts.ServerMessageChan,
		gameLoopInterval:  opts.GameLoopInterval,
		settings:          opts.Settings,
		rng:               opts.Rand,
		logger:            log.With("session", opts.SessionID),
		kitchenState:      types.NewKitchenState(),
		done:              make(chan struct{}),
	}
	if km.clock == nil {
		km.clock = clock.New()
	}
	if km.actionQueue == nil {
		km.actionQueue = queue.NewInMemoryQueue(constants.ActionQueueSize)
	}
	if km.timerEventQueue == nil {
		km.timerEventQueue = queue.NewInMemoryQueue(constants.ActionQueueSize)
	}
	if km.stateManager == nil {
		km.stateManager = state.NewInMemoryStateManager()
	}
	if km.gameLoopInterval <= 0 {
		km.gameLoopInterval = constants.GameLoopInterval
	}
	if km.rng == nil {
		km.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return km
}

func (km *KitchenManager) SessionID() string {
	return km.sessionID
}

func (km *KitchenManager) Rules() types.Rules {
	return km.settings.Rules
}

// Start runs the kitchen loop until ctx is cancelled. Pending timers are
// stopped before it returns.
func (km *KitchenManager) Start(ctx context.Context) error {
	defer close(km.done)
	defer km.stopTimers()

	if err := km.initializeKitchen(ctx); err != nil {
		return fmt.Errorf("failed to initialize kitchen: %v", err)
	}

	ticker := time.NewTicker(km.gameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			km.logger.Debug("Kitchen stopped")
			return nil
		case t := <-ticker.C:
			if err := km.tick(ctx, t); err != nil {
				km.logger.Error("Failed to run kitchen tick: %v", err)
			}
		}
	}
}

// Done is closed once Start has returned.
func (km *KitchenManager) Done() <-chan struct{} {
	return km.done
}

func (km *KitchenManager) initializeKitchen(ctx context.Context) error {
	for i := 0; i < km.settings.InitialDishes; i++ {
		km.apply(types.SpawnAction{Dish: types.NewDish(km.rng)})
	}
	km.armSpawner()
	return km.publish(ctx, km.clock.Now())
}

// tick runs one iteration of the kitchen loop.
func (km *KitchenManager) tick(ctx context.Context, t time.Time) error {
	km.processTimerEvents()
	km.processActions()
	if !km.dirty {
		return nil
	}
	return km.publish(ctx, t)
}

// processTimerEvents applies every timer fire queued since the last tick.
// Fires from a timer that has since been re-armed or stopped are ignored.
func (km *KitchenManager) processTimerEvents() {
	pendingEvents, err := km.timerEventQueue.ReadAllMessages()
	if err != nil {
		km.logger.Error("Failed to read timer events: %v", err)
		return
	}
	for _, item := range pendingEvents {
		switch event := item.(type) {
		case *types.SpawnDueEvent:
			if event.Generation != km.spawnGen {
				km.logger.Trace("Ignoring stale spawn event %d", event.Generation)
				continue
			}
			dish := types.NewDish(km.rng)
			km.logger.Debug("Spawned %s", dish)
			km.apply(types.SpawnAction{Dish: dish})
			km.armSpawnerAfter(km.clock.Now().Sub(event.FiredAt))
		case *types.WashDoneEvent:
			if event.Generation != km.washGen {
				km.logger.Trace("Ignoring stale wash event %d", event.Generation)
				continue
			}
			km.apply(types.FinishWashAction{DishID: event.DishID})
		case *types.NoticeExpiredEvent:
			km.apply(types.ClearNoticeAction{Seq: event.Seq})
		default:
			km.logger.Error("Unhandled timer event type: %T", event)
		}
	}
}

// processActions applies every player action queued since the last tick
// and answers the requests that asked for a result.
func (km *KitchenManager) processActions() {
	pendingActions, err := km.actionQueue.ReadAllMessages()
	if err != nil {
		km.logger.Error("Failed to read actions: %v", err)
		return
	}
	for _, item := range pendingActions {
		request, ok := item.(*types.ActionRequest)
		if !ok {
			km.logger.Error("Failed to cast action to types.ActionRequest: %T", item)
			continue
		}

		var outcome Outcome
		if request.Action == nil || !request.Action.Type().IsPlayerAction() {
			outcome = Outcome{Reason: fmt.Errorf("%w: %T", ErrUnknownAction, request.Action)}
		} else {
			outcome = km.apply(request.Action)
		}

		if outcome.Reason != nil {
			km.logger.Debug("Rejected %T: %v", request.Action, outcome.Reason)
		}

		if request.Result != nil {
			request.Result <- types.ActionResult{
				Accepted: outcome.Accepted,
				Reason:   outcome.Reason,
				State:    km.kitchenState.Copy(),
			}
		}
	}
}

// apply runs an action through the transition rules and keeps the timers in
// step with the new state.
func (km *KitchenManager) apply(action types.Action) Outcome {
	next, outcome := Reduce(km.kitchenState, action, km.settings.Rules)
	if !outcome.Changed {
		return outcome
	}
	km.kitchenState = next
	km.dirty = true

	if outcome.WashStarted {
		km.armWash(next.Sink.ID)
	}
	if outcome.NoticeRaised {
		km.armNotice(next.NoticeSeq)
	}
	if outcome.CupboardChanged {
		km.armSpawner()
	}

	return outcome
}

// publish stores a snapshot and hands a kitchen update to the broadcaster.
// The kitchen stays dirty until an update is accepted, so a dropped update is
// replaced by a fresh snapshot on the next tick.
func (km *KitchenManager) publish(ctx context.Context, t time.Time) error {
	snapshot := km.kitchenState.Copy()
	if err := km.stateManager.Set(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to set kitchen state: %v", err)
	}

	if km.serverMessageChan == nil {
		km.dirty = false
		return nil
	}

	msg := workers.ServerMessage{
		SessionID: km.sessionID,
		Type:      messages.MessageTypeServerKitchenUpdate,
		Message: &messages.ServerKitchenUpdate{
			SessionID: km.sessionID,
			Timestamp: t.UnixMilli(),
			State:     snapshot,
		},
	}
	select {
	case km.serverMessageChan <- msg:
		km.dirty = false
	default:
		km.logger.Warn("Server message channel is full, retrying kitchen update next tick")
	}

	return nil
}

// Enqueue queues a player action without waiting for its result.
func (km *KitchenManager) Enqueue(action types.Action) error {
	if err := km.actionQueue.Enqueue(&types.ActionRequest{Action: action}); err != nil {
		return fmt.Errorf("failed to enqueue action: %w", err)
	}
	return nil
}

// Dispatch queues a player action and waits for the loop to apply it.
func (km *KitchenManager) Dispatch(ctx context.Context, action types.Action) (types.ActionResult, error) {
	result := make(chan types.ActionResult, 1)
	request := &types.ActionRequest{
		Action: action,
		Result: result,
	}
	if err := km.actionQueue.Enqueue(request); err != nil {
		return types.ActionResult{}, fmt.Errorf("failed to enqueue action: %w", err)
	}

	select {
	case r := <-result:
		return r, nil
	case <-km.done:
		return types.ActionResult{}, ErrKitchenClosed
	case <-ctx.Done():
		return types.ActionResult{}, ctx.Err()
	}
}

// Snapshot returns the state published by the last tick.
func (km *KitchenManager) Snapshot(ctx context.Context) (*types.KitchenState, error) {
	return km.stateManager.Get(ctx)
}
