package sim

import "time"

// Fixed-timestep constants. Grounded on original_source/server/main.cpp's
// RunServerLoop/CreatePlayerEntity/CreateEnemyEntity/SpawnProjectileFrom,
// with the enemy spawn interval fixed per spec.md §4.6 step 11's own text
// rather than the original's inconsistent 8s literal.
const (
	TickRate         = 60
	TickDelta        = time.Second / TickRate
	TickDeltaSeconds = 1.0 / TickRate
	MaxAccumulator   = 5 * TickDeltaSeconds

	PlayerSpeed = 200.0 // units/second, normalized across 8 directions
	ChaseSpeed  = 120.0
	FleeSpeed   = 150.0
	PatrolSpeed = 60.0

	PlayerProjectileDamage = 10
	PlayerProjectileSpeed  = 400.0
	EnemyProjectileDamage  = 15
	EnemyProjectileSpeed   = 200.0

	PlayerFireCooldown = 0.3
	EnemyFireCooldown  = 2.0

	InvincibilityWindow = 0.5

	EnemySpawnInterval = 2.0
	EnemySpawnEdgeX     = 900.0
	EnemySpawnMinY      = 50.0
	EnemySpawnMaxY      = 550.0

	DefaultPlayerX = 400.0
	DefaultPlayerY = 300.0

	IdleThreshold = 10 * time.Second
)
