package sim

import (
	"time"

	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
	"github.com/r-type/server/internal/core/event"
)

// collisionRadius returns the radius used for the circle/circle distance
// test; box colliders are approximated by their largest half-extent, per
// spec.md §4.6 step 7 ("max-radius approximation for box colliders").
func collisionRadius(c *components.Collider) float64 {
	if c.ShapeKind == components.ShapeBox {
		half := c.Width / 2
		if c.Height/2 > half {
			half = c.Height / 2
		}
		return half
	}
	return c.Radius
}

func overlaps(ax, ay float64, ac *components.Collider, bx, by float64, bc *components.Collider) bool {
	dx := ax - bx
	dy := ay - by
	distSq := dx*dx + dy*dy
	r := collisionRadius(ac) + collisionRadius(bc)
	return distSq <= r*r
}

// runCollisionSystem iterates unordered pairs of colliding entities.
// Entities on the same team never damage each other. Each direction
// (A→B and B→A) applies damage independently when the source has
// Damager and the target has Health and isn't currently invincible; a
// successful hit starts the target's invincibility window and, unless
// the source collider is a trigger, queues the source for destruction.
func (k *Kernel) runCollisionSystem(_ time.Duration) {
	entities := k.collidable.Entities()
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			k.resolvePair(a, b)
		}
	}
}

func (k *Kernel) resolvePair(a, b ecs.EntityID) {
	ta, ok := k.World.Transform(a)
	if !ok {
		return
	}
	tb, ok := k.World.Transform(b)
	if !ok {
		return
	}
	ca, ok := k.World.Collider(a)
	if !ok {
		return
	}
	cb, ok := k.World.Collider(b)
	if !ok {
		return
	}
	if !overlaps(ta.X, ta.Y, ca, tb.X, tb.Y, cb) {
		return
	}

	teamA, hasTeamA := k.World.Team(a)
	teamB, hasTeamB := k.World.Team(b)
	if hasTeamA && hasTeamB && teamA.TeamID == teamB.TeamID {
		return
	}

	k.applyHit(a, b, ca)
	k.applyHit(b, a, cb)
}

// killScore is the point value credited to a player whose owned
// projectile destroys an enemy — the open question spec.md §9 leaves
// unresolved beyond "wire it in the collision phase".
const killScore = 10

// applyHit applies source's Damager to target's Health, if present and
// the target isn't invincible, then starts the invincibility window,
// credits score/emits events on a kill, and queues the source for
// destruction unless it's a trigger collider.
func (k *Kernel) applyHit(source, target ecs.EntityID, sourceCollider *components.Collider) {
	dmg, ok := k.World.Damager(source)
	if !ok {
		return
	}
	hp, ok := k.World.Health(target)
	if !ok {
		return
	}
	if hp.Invincible || hp.InvincibilityTimer > 0 {
		return
	}
	hp.Current -= dmg.Damage
	hp.InvincibilityTimer = InvincibilityWindow

	if hp.Current <= 0 {
		targetTeam := components.TeamNeutral
		if tm, ok := k.World.Team(target); ok {
			targetTeam = tm.TeamID
		}
		event.Emit(k.Bus, event.EntityKilled{EntityID: target, Team: targetTeam})

		if owner := ecs.EntityID(dmg.Owner); owner != 0 {
			if score, ok := k.World.Score(owner); ok {
				score.Points += killScore
				event.Emit(k.Bus, event.PlayerScored{PlayerID: owner, Points: killScore})
			}
		}
	}

	if !sourceCollider.IsTrigger {
		k.World.MarkForDestruction(source)
	}
}
