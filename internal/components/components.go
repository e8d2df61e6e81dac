// Package components holds the plain-data component types attached to
// entities in the simulation world. None of them carry behavior; systems
// in internal/sim interpret them.
package components

// Transform is an entity's position and facing in the play field.
type Transform struct {
	X, Y     float64
	Rotation float64
}

// Velocity is an entity's linear speed along each axis, in units/second.
type Velocity struct {
	VX, VY float64
}

// PlayerInput is the last input state received for a player-controlled
// entity, applied by the movement and firing systems each tick.
// Direction follows the numpad convention the wire protocol carries:
//
//	7 8 9
//	4 5 6   (5 = idle)
//	1 2 3
type PlayerInput struct {
	Direction   uint8
	FirePressed bool
}

const DirIdle uint8 = 5

// Team identifies which side an entity belongs to; the collision system
// ignores hits between colliders that share a TeamID.
type Team struct {
	TeamID int
}

const (
	TeamPlayers = 0
	TeamEnemies = 1
	TeamNeutral = 2
)

// Health tracks hit points and a brief post-hit invincibility window.
type Health struct {
	Current, Max        int
	Invincible           bool
	InvincibilityTimer   float64
}

// NewHealth returns a full-health component with the given max, not
// invincible.
func NewHealth(max int) Health {
	return Health{Current: max, Max: max}
}

// Lifetime destroys its entity once TimeLeft reaches zero, used for
// projectiles and other transient entities.
type Lifetime struct {
	TimeLeft float64
}

// Score accrues points for a player-owned entity as it kills enemies.
type Score struct {
	Points int
}

// Boundary enforces play-field edges on its entity: wrap teleports across
// the opposite edge, otherwise entities leaving the bounds are destroyed
// unless Destroy is false (in which case they are clamped).
type Boundary struct {
	MinX, MaxX, MinY, MaxY float64
	Wrap                   bool
	Destroy                bool
}

// DefaultBoundary matches the original play field: an 800x600 arena,
// leaving entities that exit it destroyed rather than wrapped or clamped.
// Player entities carry it; enemies and projectiles are spawned with
// their own, wider bounds.
func DefaultBoundary() Boundary {
	return Boundary{MinX: 0, MaxX: 800, MinY: 0, MaxY: 600, Destroy: true}
}

// Shape selects a Collider's geometry test.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeBox
)

// Collider marks an entity as participating in collision detection.
type Collider struct {
	ShapeKind           Shape
	Radius              float64
	Width, Height       float64
	IsTrigger           bool
}

// NewCircleCollider returns a circular collider with the given radius.
func NewCircleCollider(radius float64) Collider {
	return Collider{ShapeKind: ShapeCircle, Radius: radius}
}

// Damager marks an entity (typically a projectile) as dealing damage to
// whatever Collider it overlaps, subject to Team filtering. Owner
// records which entity is credited with a kill — the shooter, not the
// projectile itself — and is zero for damage sources with no individual
// owner (e.g. an enemy's body-contact damage).
type Damager struct {
	Damage int
	Owner  uint64
}

// SpawnType selects what a Spawner instantiates each time its cooldown
// elapses.
type SpawnType int

const (
	SpawnProjectile SpawnType = iota
	SpawnEnemy
	SpawnPowerup
)

// Spawner periodically creates new entities — used for the enemy wave
// spawner and could be reused for any other timed-spawn source.
type Spawner struct {
	Kind                   SpawnType
	SpawnTimer             float64
	SpawnCooldown          float64
	SpawnCount             int
	MaxSpawns              int // -1 means unlimited
	SpawnOffsetX, SpawnOffsetY float64
	SpawnVelocityX, SpawnVelocityY float64
}

// AIState is the behavioral mode of an AIController.
type AIState int

const (
	AIIdle AIState = iota
	AIPatrol
	AIChase
	AIAttack
	AIFlee
)

// AIController drives non-scripted enemy movement: chase the nearest
// opposing-team entity within detection range, stop within attack range,
// retreat below a health threshold. Firing is not gated by it; an armed
// enemy fires whenever its Weapon cooldown runs out.
type AIController struct {
	State               AIState
	Target              uint64 // EntityID of the entity being tracked, or 0
	DetectionRange      float64
	AttackRange         float64
	FleeHealthThreshold float64
	DecisionTimer       float64
	DecisionCooldown    float64
}

// NewAIController returns an AIController with the defaults the original
// enemy archetype used.
func NewAIController() AIController {
	return AIController{
		DetectionRange:      300,
		AttackRange:         50,
		FleeHealthThreshold: 0.3,
		DecisionCooldown:    1.0,
	}
}

// PlayerTag marks an entity as player-controlled and records which
// client owns it.
type PlayerTag struct {
	ClientID uint32
}

// Weapon tracks fire-cooldown bookkeeping for non-player shooters (enemy
// AI has no owning Session to hold this, unlike a player's cooldown which
// lives on its Session). Attached only to entities that can fire.
type Weapon struct {
	Cooldown float64
	Timer    float64
}

// Script hooks an entity into the Lua scripting engine. Most entities
// never carry this component; when present and Enabled, the engine calls
// on_update(entityID, dt) once per tick, on_init once when attached, and
// on_destroy once when the entity is torn down.
type Script struct {
	Path      string
	Enabled   bool
	Variables map[string]float64
}
