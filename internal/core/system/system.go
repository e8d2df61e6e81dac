package system

import "time"

// Phase defines execution ordering within a single simulation tick,
// matching the fixed per-tick pipeline: input is drained first, AI
// decides intent, movement integrates velocity, boundary enforces the
// play field, spawners create new entities, collision resolves overlaps,
// health applies damage and invincibility, lifetime ages out transient
// entities, firing spawns projectiles, the enemy wave spawner introduces
// new enemies, and cleanup flushes anything marked for destruction this
// tick.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseAI
	PhaseMovement
	PhaseBoundary
	PhaseSpawner
	PhaseCollision
	PhaseHealth
	PhaseLifetime
	PhaseFiring
	PhaseWaveSpawn
	PhaseCleanup
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
