package types

import "time"

// SpawnDueEvent is queued when the spawn timer fires at FiredAt.
type SpawnDueEvent struct {
	Generation uint64
	FiredAt    time.Time
}

// WashDoneEvent is queued when the wash timer for DishID fires.
type WashDoneEvent struct {
	Generation uint64
	DishID     string
}

// NoticeExpiredEvent is queued when the notice written with Seq has been
// shown for the full notice delay.
type NoticeExpiredEvent struct {
	Seq uint64
}

// ActionRequest carries a player action into the game loop. Result is
// optional and buffered; the loop never blocks on it.
type ActionRequest struct {
	Action Action
	Result chan<- ActionResult
}

// ActionResult is the answer to an ActionRequest.
type ActionResult struct {
	Accepted bool
	Reason   error
	State    *KitchenState
}
