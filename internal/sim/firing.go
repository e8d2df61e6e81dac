package sim

import (
	"time"

	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
)

// runFiringSystem decrements and checks the two independent cooldown
// pools spec.md §4.6 step 1 and step 10 describe: a player's shoot
// cooldown (owned by its Session, reached through SessionSource) and an
// enemy's shoot cooldown (owned by its Weapon component). Folding the
// step-1 decrement into this same pass is equivalent to decrementing it
// separately earlier in the tick, since nothing between input and firing
// reads either cooldown.
func (k *Kernel) runFiringSystem(dt time.Duration) {
	seconds := dt.Seconds()
	k.runPlayerFiring(seconds)
	k.runEnemyFiring(seconds)
}

func (k *Kernel) runPlayerFiring(seconds float64) {
	if k.sessions == nil {
		return
	}
	k.sessions.ForEachPlayer(func(id ecs.EntityID, cooldown *float64) {
		*cooldown -= seconds
		if *cooldown < 0 {
			*cooldown = 0
		}
		input, ok := k.World.Input(id)
		if !ok || !input.FirePressed || *cooldown > 0 {
			return
		}
		t, ok := k.World.Transform(id)
		if !ok {
			return
		}
		*cooldown = PlayerFireCooldown
		k.spawnProjectile(t.X, t.Y, PlayerProjectileSpeed, 0, components.TeamPlayers, PlayerProjectileDamage, id)
	})
}

func (k *Kernel) runEnemyFiring(seconds float64) {
	for _, id := range k.armedAI.Entities() {
		w, ok := k.World.Weapon(id)
		if !ok {
			continue
		}
		w.Timer -= seconds
		if w.Timer < 0 {
			w.Timer = 0
		}
		if w.Timer > 0 {
			continue
		}
		t, ok := k.World.Transform(id)
		if !ok {
			continue
		}
		tm, ok := k.World.Team(id)
		if !ok {
			continue
		}
		w.Timer = w.Cooldown
		k.spawnProjectile(t.X, t.Y, -EnemyProjectileSpeed, 0, tm.TeamID, EnemyProjectileDamage, 0)
	}
}
