package types

import "fmt"

type ActionType string

const (
	// Player actions
	ActionTypePickUp  ActionType = "pick_up"
	ActionTypeWash    ActionType = "wash"
	ActionTypeDry     ActionType = "dry"
	ActionTypePutAway ActionType = "put_away"

	// System actions, raised by the kitchen timers
	ActionTypeSpawn       ActionType = "spawn"
	ActionTypeFinishWash  ActionType = "finish_wash"
	ActionTypeClearNotice ActionType = "clear_notice"
)

// Action is a single transition request against the kitchen state.
type Action interface {
	Type() ActionType
}

// PickUpAction moves a dish from the pile into the hand. The dish is
// looked up by ID when one is given, otherwise by its index in the pile.
type PickUpAction struct {
	DishID string
	Index  int
}

func (PickUpAction) Type() ActionType { return ActionTypePickUp }

// WashAction moves the dish in the hand into the sink.
type WashAction struct{}

func (WashAction) Type() ActionType { return ActionTypeWash }

// DryAction moves the washed dish from the sink onto the drying rack.
type DryAction struct{}

func (DryAction) Type() ActionType { return ActionTypeDry }

// PutAwayAction moves a dish from the rack into the cupboard. The dish is
// looked up by ID when one is given, otherwise by its index in the rack.
type PutAwayAction struct {
	DishID string
	Index  int
}

func (PutAwayAction) Type() ActionType { return ActionTypePutAway }

// SpawnAction appends a new dish to the pile.
type SpawnAction struct {
	Dish Dish
}

func (SpawnAction) Type() ActionType { return ActionTypeSpawn }

// FinishWashAction marks the dish in the sink as dryable. It is ignored
// unless the sink still holds the dish with DishID.
type FinishWashAction struct {
	DishID string
}

func (FinishWashAction) Type() ActionType { return ActionTypeFinishWash }

// ClearNoticeAction clears the notice written with sequence number Seq.
// A newer notice is left alone.
type ClearNoticeAction struct {
	Seq uint64
}

func (ClearNoticeAction) Type() ActionType { return ActionTypeClearNotice }

// IsPlayerAction reports whether the action type can be requested by a player.
func (t ActionType) IsPlayerAction() bool {
	switch t {
	case ActionTypePickUp, ActionTypeWash, ActionTypeDry, ActionTypePutAway:
		return true
	default:
		return false
	}
}

// NewPlayerAction builds a player action from its wire representation.
func NewPlayerAction(actionType ActionType, dishID string, index int) (Action, error) {
	switch actionType {
	case ActionTypePickUp:
		return PickUpAction{DishID: dishID, Index: index}, nil
	case ActionTypeWash:
		return WashAction{}, nil
	case ActionTypeDry:
		return DryAction{}, nil
	case ActionTypePutAway:
		return PutAwayAction{DishID: dishID, Index: index}, nil
	default:
		return nil, fmt.Errorf("unknown player action: %q", actionType)
	}
}
