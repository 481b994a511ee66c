// Package ecs provides ECS adapters for stages.
package ecs

import (
	"github.com/phanxgames/stages"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// DeviceEventType carries the new DeviceTier after a tier change.
var DeviceEventType = events.NewEventType[stages.DeviceTier]()

// TransformEventType carries every recomputed ViewportTransform.
var TransformEventType = events.NewEventType[stages.ViewportTransform]()

// QualityEventType carries every non-empty QualityAdjustment.
var QualityEventType = events.NewEventType[stages.QualityAdjustment]()

type donburiListener struct {
	world donburi.World
}

// NewDonburiListener creates a Listener that publishes engine changes into a
// Donburi world. Events are queued and delivered by ProcessEvents.
func NewDonburiListener(world donburi.World) stages.Listener {
	return &donburiListener{world: world}
}

func (l *donburiListener) DeviceChanged(tier stages.DeviceTier) {
	DeviceEventType.Publish(l.world, tier)
}

func (l *donburiListener) TransformChanged(t stages.ViewportTransform) {
	TransformEventType.Publish(l.world, t)
}

func (l *donburiListener) QualityAdjusted(adj stages.QualityAdjustment) {
	QualityEventType.Publish(l.world, adj)
}
