package ecs

import (
	"github.com/phanxgames/framebridge"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// DisplayEventType is the Donburi event type for frame display events.
var DisplayEventType = events.NewEventType[framebridge.DisplayEvent]()

type donburiObserver struct {
	world donburi.World
}

// NewDonburiObserver creates a DisplayObserver backed by a Donburi world.
// Display events are queued on DisplayEventType; consume them with
// Subscribe and ProcessEvents.
func NewDonburiObserver(world donburi.World) framebridge.DisplayObserver {
	return &donburiObserver{world: world}
}

func (o *donburiObserver) FrameDisplayed(ev framebridge.DisplayEvent) {
	DisplayEventType.Publish(o.world, ev)
}
