package game

import (
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/clock"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
)

// Timer callbacks run on their own goroutines. They only enqueue an event
// carrying the values captured when the timer was armed; the loop decides
// whether the event is still current.

// armSpawner (re)starts the spawn timer with the period for the current
// cupboard count.
func (km *KitchenManager) armSpawner() {
	km.armSpawnerAfter(0)
}

// armSpawnerAfter starts the next spawn period as if it began elapsed ago.
// Spawns handled a tick after the timer fired keep their cadence this way.
func (km *KitchenManager) armSpawnerAfter(elapsed time.Duration) {
	if km.spawnTimer != nil {
		km.spawnTimer.Stop()
	}
	km.spawnGen++
	gen := km.spawnGen
	delay := SpawnInterval(km.kitchenState.Cupboard, km.settings.SpawnBaseDelay) - elapsed
	if delay < 0 {
		delay = 0
	}
	km.spawnTimer = km.clock.AfterFunc(delay, func() {
		km.enqueueTimerEvent(&types.SpawnDueEvent{Generation: gen, FiredAt: km.clock.Now()})
	})
}

// armWash starts the wash timer for the dish that just entered the sink.
func (km *KitchenManager) armWash(dishID string) {
	if km.washTimer != nil {
		km.washTimer.Stop()
	}
	km.washGen++
	gen := km.washGen
	km.washTimer = km.clock.AfterFunc(km.settings.WashTime, func() {
		km.enqueueTimerEvent(&types.WashDoneEvent{Generation: gen, DishID: dishID})
	})
}

// armNotice restarts the clear timer for the notice written with seq.
func (km *KitchenManager) armNotice(seq uint64) {
	if km.noticeTimer != nil {
		km.noticeTimer.Stop()
	}
	km.noticeTimer = km.clock.AfterFunc(km.settings.NoticeDelay, func() {
		km.enqueueTimerEvent(&types.NoticeExpiredEvent{Seq: seq})
	})
}

func (km *KitchenManager) stopTimers() {
	for _, t := range []clock.Timer{km.spawnTimer, km.washTimer, km.noticeTimer} {
		if t != nil {
			t.Stop()
		}
	}
	// invalidate fires that were already queued
	km.spawnGen++
	km.washGen++
}

func (km *KitchenManager) enqueueTimerEvent(event interface{}) {
	if err := km.timerEventQueue.Enqueue(event); err != nil {
		km.logger.Error("Failed to enqueue timer event %T: %v", event, err)
	}
}
