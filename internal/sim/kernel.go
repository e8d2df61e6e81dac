// Package sim implements the fixed-timestep simulation kernel: the
// eleven-phase per-tick pipeline (input, AI, movement, boundary,
// spawner, collision, health, lifetime, firing, enemy wave spawning,
// deferred destruction) that spec.md §4.6 declares, built on top of the
// System Registry/Runner pair in internal/core/system.
package sim

import (
	"time"

	"github.com/r-type/server/internal/core/ecs"
	"github.com/r-type/server/internal/core/event"
	"github.com/r-type/server/internal/core/system"
	"github.com/r-type/server/internal/data"
	"github.com/r-type/server/internal/rng"
)

// funcSystem adapts a plain closure to the system.System interface so
// each tick phase can be registered with the Runner without a bespoke
// named type per phase.
type funcSystem struct {
	phase system.Phase
	fn    func(dt time.Duration)
}

func (s *funcSystem) Phase() system.Phase     { return s.phase }
func (s *funcSystem) Update(dt time.Duration) { s.fn(dt) }

// Kernel owns the World, the System Registry's working sets, and the
// Runner that executes phases in order. It also owns the two pieces of
// tick-global state spec.md calls out: the fixed-step accumulator and
// the enemy wave spawn timer.
type Kernel struct {
	World    *ecs.World
	Registry *system.Registry
	Bus      *event.Bus
	RNG      rng.Source

	runner *system.Runner

	accumulator     float64
	tick            uint32
	enemySpawnTimer float64

	movers       *system.WorkingSet // Transform + Velocity
	inputDriven  *system.WorkingSet // PlayerInput + Velocity
	aiControlled *system.WorkingSet // AIController + Transform + Velocity + Team
	bounded      *system.WorkingSet // Transform + Boundary
	spawners     *system.WorkingSet // Spawner + Transform
	collidable   *system.WorkingSet // Transform + Collider
	healthy      *system.WorkingSet // Health
	timedLived   *system.WorkingSet // Lifetime
	armedAI      *system.WorkingSet // AIController + Weapon + Team + Transform
	scripted     *system.WorkingSet // Script + Transform

	sessions SessionSource
	scripts  ScriptRunner
	waves    *data.WaveTable
}

// SessionSource lets the firing phase reach each connected player's
// shoot cooldown, which spec.md §3 places on the Session rather than the
// ECS world. Defined here (not in internal/session) so internal/session
// never needs to import internal/sim — session.Manager satisfies this
// interface structurally.
type SessionSource interface {
	ForEachPlayer(fn func(entityID ecs.EntityID, cooldown *float64))
}

// SetSessions wires the Session Manager the firing phase consumes. Tests
// that only exercise enemy firing or other phases may leave this unset.
func (k *Kernel) SetSessions(s SessionSource) { k.sessions = s }

// ScriptRunner lets the AI phase and Cleanup phase reach the Lua
// scripting engine for Script-driven entities, which substitute a Lua
// callback chain for native AIController logic per SPEC_FULL.md §3.
// Defined here and satisfied structurally by scripting.Engine, so neither
// internal/sim nor internal/scripting imports the other.
type ScriptRunner interface {
	OnInit(id ecs.EntityID, scriptPath string)
	OnUpdate(id ecs.EntityID, scriptPath string, dt float64)
	OnDestroy(id ecs.EntityID, scriptPath string)
}

// SetScripts wires the scripting engine. Entities may carry a Script
// component with no engine configured (e.g. in tests); OnInit/OnUpdate/
// OnDestroy are simply skipped in that case.
func (k *Kernel) SetScripts(r ScriptRunner) { k.scripts = r }

// SetWaveTable wires the enemy archetype table the wave-spawn phase
// draws from. Kernels left unconfigured fall back to
// data.DefaultWaveTable's single hardcoded archetype.
func (k *Kernel) SetWaveTable(t *data.WaveTable) { k.waves = t }

func NewKernel(w *ecs.World, bus *event.Bus, source rng.Source) *Kernel {
	reg := system.NewRegistry()
	w.Observe(reg.Observer())

	k := &Kernel{
		World:    w,
		Registry: reg,
		Bus:      bus,
		RNG:      source,
		runner:   system.NewRunner(),
		waves:    data.DefaultWaveTable(),
	}

	k.movers = reg.NewWorkingSet(ecs.BitTransform | ecs.BitVelocity)
	k.inputDriven = reg.NewWorkingSet(ecs.BitPlayerInput | ecs.BitVelocity)
	k.aiControlled = reg.NewWorkingSet(ecs.BitAIController | ecs.BitTransform | ecs.BitVelocity | ecs.BitTeam)
	k.bounded = reg.NewWorkingSet(ecs.BitTransform | ecs.BitBoundary)
	k.spawners = reg.NewWorkingSet(ecs.BitSpawner | ecs.BitTransform)
	k.collidable = reg.NewWorkingSet(ecs.BitTransform | ecs.BitCollider)
	k.healthy = reg.NewWorkingSet(ecs.BitHealth)
	k.timedLived = reg.NewWorkingSet(ecs.BitLifetime)
	k.armedAI = reg.NewWorkingSet(ecs.BitAIController | ecs.BitWeapon | ecs.BitTeam | ecs.BitTransform)
	k.scripted = reg.NewWorkingSet(ecs.BitScript | ecs.BitTransform)

	k.registerSystems()
	return k
}

func (k *Kernel) registerSystems() {
	k.runner.Register(&funcSystem{system.PhaseInput, k.runInputSystem})
	k.runner.Register(&funcSystem{system.PhaseAI, k.runAISystem})
	k.runner.Register(&funcSystem{system.PhaseMovement, k.runMovementSystem})
	k.runner.Register(&funcSystem{system.PhaseBoundary, k.runBoundarySystem})
	k.runner.Register(&funcSystem{system.PhaseSpawner, k.runSpawnerSystem})
	k.runner.Register(&funcSystem{system.PhaseCollision, k.runCollisionSystem})
	k.runner.Register(&funcSystem{system.PhaseHealth, k.runHealthSystem})
	k.runner.Register(&funcSystem{system.PhaseLifetime, k.runLifetimeSystem})
	k.runner.Register(&funcSystem{system.PhaseFiring, k.runFiringSystem})
	k.runner.Register(&funcSystem{system.PhaseWaveSpawn, k.runWaveSpawnSystem})
	k.runner.Register(&funcSystem{system.PhaseCleanup, k.runCleanupSystem})
}

// Tick returns the number of fixed steps executed so far.
func (k *Kernel) Tick() uint32 { return k.tick }

// Advance feeds elapsed wall-clock time into the accumulator and runs as
// many fixed Δ=1/60s steps as are due, capping the accumulator at
// MaxAccumulator to avoid a death spiral on a slow host. It returns the
// number of steps executed this call.
func (k *Kernel) Advance(elapsed time.Duration) int {
	k.accumulator += elapsed.Seconds()
	if k.accumulator > MaxAccumulator {
		k.accumulator = MaxAccumulator
	}
	steps := 0
	for k.accumulator >= TickDeltaSeconds {
		k.Step()
		k.accumulator -= TickDeltaSeconds
		steps++
	}
	return steps
}

// Step runs exactly one fixed-Δ tick through every phase in declared
// order, then swaps the event bus and dispatches the events emitted
// during this tick to their subscribed handlers.
func (k *Kernel) Step() {
	k.runner.Tick(TickDelta)
	k.tick++
	k.Bus.SwapBuffers()
	k.Bus.DispatchAll()
}
