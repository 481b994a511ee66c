// Package ecs provides ECS adapters for stages engine notifications.
//
// The primary adapter is [NewDonburiListener], which bridges device tier,
// viewport transform and quality adjustment changes into a [Donburi] world as
// typed events. Subscribe to [DeviceEventType], [TransformEventType] or
// [QualityEventType] in your ECS systems to receive them.
//
// Usage:
//
//	engine := stages.NewEngine(cfg, ecs.NewDonburiListener(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
