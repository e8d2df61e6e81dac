package sim

import (
	"time"

	"github.com/r-type/server/internal/components"
)

// runSpawnerSystem drives any entity carrying a generic Spawner
// component: once its timer reaches its cooldown (and it hasn't hit
// MaxSpawns), it emits one entity of the configured kind at
// transform+offset with the configured velocity, per spec.md §4.6 step 6.
func (k *Kernel) runSpawnerSystem(dt time.Duration) {
	seconds := dt.Seconds()
	for _, id := range k.spawners.Entities() {
		sp, ok := k.World.Spawner(id)
		if !ok {
			continue
		}
		t, ok := k.World.Transform(id)
		if !ok {
			continue
		}
		sp.SpawnTimer += seconds
		if sp.SpawnTimer < sp.SpawnCooldown {
			continue
		}
		if sp.MaxSpawns >= 0 && sp.SpawnCount >= sp.MaxSpawns {
			continue
		}
		sp.SpawnTimer = 0
		sp.SpawnCount++

		x := t.X + sp.SpawnOffsetX
		y := t.Y + sp.SpawnOffsetY

		switch sp.Kind {
		case components.SpawnProjectile:
			team := components.TeamNeutral
			if tm, ok := k.World.Team(id); ok {
				team = tm.TeamID
			}
			k.spawnProjectile(x, y, sp.SpawnVelocityX, sp.SpawnVelocityY, team, PlayerProjectileDamage, 0)
		case components.SpawnEnemy:
			k.spawnEnemyAt(x, y, k.pickWaveEntry())
		case components.SpawnPowerup:
			k.spawnPowerup(x, y)
		}
	}
}

// spawnPowerup creates a neutral, trigger-only entity. Non-goal
// gameplay (what a powerup does on pickup) is left to the Script
// component hook; the system only guarantees the entity exists and is
// detectable by collision.
func (k *Kernel) spawnPowerup(x, y float64) {
	id, err := k.World.CreateEntity()
	if err != nil {
		return
	}
	k.World.AddTransform(id, components.Transform{X: x, Y: y})
	k.World.AddTeam(id, components.Team{TeamID: components.TeamNeutral})
	c := components.NewCircleCollider(8)
	c.IsTrigger = true
	k.World.AddCollider(id, c)
	k.World.AddLifetime(id, components.Lifetime{TimeLeft: 15})
}
