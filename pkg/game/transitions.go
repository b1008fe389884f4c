package game

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/game/constants"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
)

// Reasons an action is rejected. A rejection never changes anything but
// the notice.
var (
	ErrSinkOccupied  = errors.New("sink is occupied")
	ErrHandEmpty     = errors.New("hand is empty")
	ErrRackFull      = errors.New("drying rack is full")
	ErrStillWashing  = errors.New("dish is still washing")
	ErrSinkEmpty     = errors.New("sink is empty")
	ErrDishNotFound  = errors.New("dish not found")
	ErrUnknownAction = errors.New("unknown action")
)

// Outcome describes what applying an action did besides producing the next state.
type Outcome struct {
	// Accepted is false when the action was rejected
	Accepted bool
	// Reason is set when the action was rejected
	Reason error
	// Changed is false when the action left the state untouched
	Changed bool
	// WashStarted is set when a dish entered the sink
	WashStarted bool
	// NoticeRaised is set when a new notice was written
	NoticeRaised bool
	// CupboardChanged is set when a dish was put away
	CupboardChanged bool
}

// Reduce applies an action to a kitchen state and returns the next state.
// The given state is never modified.
func Reduce(state *types.KitchenState, action types.Action, rules types.Rules) (*types.KitchenState, Outcome) {
	next := state.Copy()
	var outcome Outcome

	switch a := action.(type) {
	case types.PickUpAction:
		outcome = pickUp(next, a)
	case types.WashAction:
		outcome = moveToSink(next)
	case types.DryAction:
		outcome = moveToDry(next, rules)
	case types.PutAwayAction:
		outcome = putAway(next, a)
	case types.SpawnAction:
		next.Pile = append(next.Pile, a.Dish)
		outcome = Outcome{Accepted: true, Changed: true}
	case types.FinishWashAction:
		outcome = finishWash(next, a)
	case types.ClearNoticeAction:
		outcome = clearNotice(next, a)
	default:
		return next, Outcome{Reason: fmt.Errorf("%w: %T", ErrUnknownAction, action)}
	}

	return next, outcome
}

func pickUp(s *types.KitchenState, a types.PickUpAction) Outcome {
	i := a.Index
	if a.DishID != "" {
		i = s.PileIndex(a.DishID)
	}
	if i < 0 || i >= len(s.Pile) {
		return reject(s, ErrDishNotFound, constants.NoticeDishNotInPile)
	}

	dish := s.Pile[i]
	pile := make([]types.Dish, 0, len(s.Pile))
	pile = append(pile, s.Pile[:i]...)
	pile = append(pile, s.Pile[i+1:]...)
	if s.Hand != nil {
		pile = append(pile, *s.Hand)
	}
	s.Pile = pile
	s.Hand = &dish

	return Outcome{Accepted: true, Changed: true}
}

func moveToSink(s *types.KitchenState) Outcome {
	if s.Hand == nil {
		return reject(s, ErrHandEmpty, constants.NoticeHandEmpty)
	}
	if s.Sink != nil {
		return reject(s, ErrSinkOccupied, constants.NoticeSinkOccupied)
	}

	s.Sink = s.Hand
	s.Hand = nil
	s.CanDry = false

	return Outcome{Accepted: true, Changed: true, WashStarted: true}
}

func moveToDry(s *types.KitchenState, rules types.Rules) Outcome {
	if s.Sink == nil {
		return reject(s, ErrSinkEmpty, constants.NoticeSinkEmpty)
	}
	if !s.CanDry {
		return reject(s, ErrStillWashing, constants.NoticeStillWashing)
	}
	if len(s.Rack) >= rules.RackCapacity {
		return reject(s, ErrRackFull, constants.NoticeRackFull)
	}

	s.Rack = append(s.Rack, *s.Sink)
	s.Sink = nil
	s.CanDry = false

	return Outcome{Accepted: true, Changed: true}
}

func putAway(s *types.KitchenState, a types.PutAwayAction) Outcome {
	i := a.Index
	if a.DishID != "" {
		i = s.RackIndex(a.DishID)
	}
	if i < 0 || i >= len(s.Rack) {
		return reject(s, ErrDishNotFound, constants.NoticeDishNotOnRack)
	}

	rack := make([]types.Dish, 0, len(s.Rack)-1)
	rack = append(rack, s.Rack[:i]...)
	rack = append(rack, s.Rack[i+1:]...)
	s.Rack = rack
	s.Cupboard++

	return Outcome{Accepted: true, Changed: true, CupboardChanged: true}
}

func finishWash(s *types.KitchenState, a types.FinishWashAction) Outcome {
	if s.Sink == nil || s.Sink.ID != a.DishID || s.CanDry {
		return Outcome{Accepted: true}
	}
	s.CanDry = true
	return Outcome{Accepted: true, Changed: true}
}

func clearNotice(s *types.KitchenState, a types.ClearNoticeAction) Outcome {
	if s.Notice == "" || s.NoticeSeq != a.Seq {
		return Outcome{Accepted: true}
	}
	s.Notice = ""
	return Outcome{Accepted: true, Changed: true}
}

// reject writes the notice for a rejected action. Every write bumps the
// sequence so the notice timer restarts even when the text repeats.
func reject(s *types.KitchenState, reason error, notice string) Outcome {
	s.Notice = notice
	s.NoticeSeq++
	return Outcome{Reason: reason, Changed: true, NoticeRaised: true}
}

// SpawnInterval returns the spawn period for a cupboard count. It starts at
// twice the base delay and approaches the base delay as the cupboard fills.
func SpawnInterval(cupboard int, base time.Duration) time.Duration {
	if cupboard < 0 {
		cupboard = 0
	}
	ms := float64(base.Milliseconds())
	ms += ms / (math.Log(float64(cupboard)+1) + 1)
	return time.Duration(math.Round(ms)) * time.Millisecond
}
