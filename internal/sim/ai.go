package sim

import (
	"math"
	"time"

	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
)

// runAISystem ticks every AIController's decision timer; once it exceeds
// decisionCooldown, the controller re-evaluates its state and (every
// tick, not just on re-evaluation) drives velocity from the current
// state, per spec.md §4.6 step 3.
func (k *Kernel) runAISystem(dt time.Duration) {
	seconds := dt.Seconds()
	for _, id := range k.aiControlled.Entities() {
		ai, ok := k.World.AIController(id)
		if !ok {
			continue
		}
		t, ok := k.World.Transform(id)
		if !ok {
			continue
		}
		v, ok := k.World.Velocity(id)
		if !ok {
			continue
		}
		team, ok := k.World.Team(id)
		if !ok {
			continue
		}

		ai.DecisionTimer += seconds
		if ai.DecisionTimer >= ai.DecisionCooldown {
			ai.DecisionTimer = 0
			k.reevaluate(id, ai, t, team)
		} else if ai.Target != 0 {
			// Target may have been destroyed between decisions.
			if _, alive := k.World.Transform(ecs.EntityID(ai.Target)); !alive {
				ai.State = components.AIIdle
				ai.Target = 0
			}
		}

		k.applyAIState(ai, t, v)
	}

	k.runScriptedEntities(seconds)
}

// runScriptedEntities invokes each enabled Script component's on_update
// hook, the Lua-driven substitute for native AIController logic
// SPEC_FULL.md §3 describes. Sharing the AI phase keeps every
// behavior-decision system in the same declared tick slot instead of
// adding a step spec.md's tick order doesn't name.
func (k *Kernel) runScriptedEntities(seconds float64) {
	if k.scripts == nil {
		return
	}
	for _, id := range k.scripted.Entities() {
		script, ok := k.World.Script(id)
		if !ok || !script.Enabled {
			continue
		}
		k.scripts.OnUpdate(id, script.Path, seconds)
	}
}

func (k *Kernel) reevaluate(id ecs.EntityID, ai *components.AIController, t *components.Transform, team *components.Team) {
	if hp, ok := k.World.Health(id); ok && hp.Max > 0 {
		if float64(hp.Current)/float64(hp.Max) < ai.FleeHealthThreshold {
			ai.State = components.AIFlee
			return
		}
	}

	target, dist, found := k.nearestOpponent(id, t, team)
	if !found {
		ai.State = components.AIIdle
		ai.Target = 0
		return
	}
	ai.Target = uint64(target)
	switch {
	case dist <= ai.AttackRange:
		ai.State = components.AIAttack
	case dist <= ai.DetectionRange:
		ai.State = components.AIChase
	default:
		// An opponent exists but is beyond detection range: patrol
		// rather than sit fully idle.
		ai.State = components.AIPatrol
	}
}

// nearestOpponent finds the closest entity with a Team different from
// team and a Transform, per spec.md §4.6 step 3.
func (k *Kernel) nearestOpponent(self ecs.EntityID, t *components.Transform, team *components.Team) (ecs.EntityID, float64, bool) {
	var best ecs.EntityID
	bestDist := math.MaxFloat64
	found := false

	k.World.Teams.Each(func(id ecs.EntityID, other *components.Team) {
		if id == self || other.TeamID == team.TeamID {
			return
		}
		ot, ok := k.World.Transform(id)
		if !ok {
			return
		}
		dx := ot.X - t.X
		dy := ot.Y - t.Y
		d := math.Hypot(dx, dy)
		if d < bestDist {
			bestDist = d
			best = id
			found = true
		}
	})
	return best, bestDist, found
}

func (k *Kernel) applyAIState(ai *components.AIController, t *components.Transform, v *components.Velocity) {
	switch ai.State {
	case components.AIAttack:
		v.VX, v.VY = 0, 0
	case components.AIChase:
		k.steerToward(ai, t, v, ChaseSpeed, false)
	case components.AIFlee:
		k.steerToward(ai, t, v, FleeSpeed, true)
	case components.AIPatrol:
		// Drift left with a sinusoidal y-component.
		v.VX = -PatrolSpeed
		v.VY = math.Sin(t.X*0.05) * PatrolSpeed * 0.5
	case components.AIIdle:
		fallthrough
	default:
		v.VX, v.VY = 0, 0
	}
}

func (k *Kernel) steerToward(ai *components.AIController, t *components.Transform, v *components.Velocity, speed float64, away bool) {
	if ai.Target == 0 {
		v.VX, v.VY = 0, 0
		return
	}
	target, ok := k.World.Transform(ecs.EntityID(ai.Target))
	if !ok {
		ai.State = components.AIIdle
		ai.Target = 0
		v.VX, v.VY = 0, 0
		return
	}
	dx := target.X - t.X
	dy := target.Y - t.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		v.VX, v.VY = 0, 0
		return
	}
	if away {
		dx, dy = -dx, -dy
	}
	v.VX = dx / dist * speed
	v.VY = dy / dist * speed
}
