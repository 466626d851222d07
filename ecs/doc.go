// Package ecs provides ECS adapters for framebridge's display events.
//
// The primary adapter is [NewDonburiObserver], which forwards every frame a
// [framebridge.FrameLayer] displays into a [Donburi] world as a typed event.
// Subscribe to [DisplayEventType] in your ECS systems to receive them.
//
// Usage:
//
//	layer.AddObserver(ecs.NewDonburiObserver(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
