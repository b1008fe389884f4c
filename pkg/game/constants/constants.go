package constants

import "time"

const (
	// SpawnBaseDelay is the spawn period the spawner converges to as the cupboard fills
	SpawnBaseDelay time.Duration = 5000 * time.Millisecond
	// WashTime is how long a dish stays in the sink before it can be dried
	WashTime time.Duration = 5000 * time.Millisecond
	// NoticeDelay is how long a notice is shown before it clears itself
	NoticeDelay time.Duration = 5000 * time.Millisecond
	// RackCapacity is the number of dishes the drying rack holds
	RackCapacity int = 10
	// InitialDishes is the number of dishes in the pile when a kitchen opens
	InitialDishes int = 1

	// GameLoopInterval is how often a kitchen drains its action queue
	GameLoopInterval time.Duration = 50 * time.Millisecond
	// ActionQueueSize is the capacity of a kitchen's action queue
	ActionQueueSize int = 1024
)

// Notices shown to the player when an action is rejected
const (
	NoticeSinkOccupied  = "wash the things in the sink first!"
	NoticeHandEmpty     = "pick something up first!"
	NoticeRackFull      = "put away the dry dishes first!"
	NoticeStillWashing  = "wait for the dishes to finish washing!"
	NoticeSinkEmpty     = "there is nothing in the sink!"
	NoticeDishNotInPile = "that dish is not in the pile anymore!"
	NoticeDishNotOnRack = "that dish is not on the rack anymore!"
)
