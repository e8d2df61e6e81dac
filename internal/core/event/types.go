package event

import "github.com/r-type/server/internal/core/ecs"

// EntityKilled is emitted by the collision system when a hit drops an
// entity's HP to zero or below.
type EntityKilled struct {
	EntityID ecs.EntityID
	Team     int
}

// PlayerScored is emitted by the collision system when a player-owned
// damager kills an entity, carrying the point value awarded.
type PlayerScored struct {
	PlayerID ecs.EntityID
	Points   int
}

// PlayerJoined describes a HELLO creating a new player entity. No code in
// this repository emits it; the session manager has no event bus.
type PlayerJoined struct {
	EntityID ecs.EntityID
	ClientID uint32
}

// PlayerLeft describes a peer being reaped for going idle. No code in this
// repository emits it.
type PlayerLeft struct {
	EntityID ecs.EntityID
	ClientID uint32
}
