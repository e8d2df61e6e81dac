package sim

import (
	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
	"github.com/r-type/server/internal/data"
)

// SpawnPlayer creates a player-controlled entity at the default spawn
// point, grounded on original_source/server/main.cpp's CreatePlayerEntity.
func (k *Kernel) SpawnPlayer(clientID uint32) (ecs.EntityID, error) {
	id, err := k.World.CreateEntity()
	if err != nil {
		return 0, err
	}
	k.World.AddTransform(id, components.Transform{X: DefaultPlayerX, Y: DefaultPlayerY})
	k.World.AddVelocity(id, components.Velocity{})
	k.World.AddInput(id, components.PlayerInput{Direction: components.DirIdle})
	k.World.AddTeam(id, components.Team{TeamID: components.TeamPlayers})
	k.World.AddHealth(id, components.NewHealth(100))
	k.World.AddCollider(id, components.NewCircleCollider(10))
	k.World.AddBoundary(id, components.DefaultBoundary())
	k.World.AddPlayerTag(id, components.PlayerTag{ClientID: clientID})
	k.World.AddScore(id, components.Score{})
	return id, nil
}

// spawnEnemyAt creates an enemy from a wave table entry, grounded on
// original_source/server/main.cpp's CreateEnemyEntity. An entry with a
// non-empty ScriptPath delegates to SpawnScriptedEnemy instead of
// attaching a native AIController, per SPEC_FULL.md §3.
func (k *Kernel) spawnEnemyAt(x, y float64, entry data.WaveEntry) (ecs.EntityID, error) {
	if entry.ScriptPath != "" {
		return k.SpawnScriptedEnemy(x, y, entry.ScriptPath)
	}

	id, err := k.World.CreateEntity()
	if err != nil {
		return 0, err
	}
	k.World.AddTransform(id, components.Transform{X: x, Y: y})
	k.World.AddVelocity(id, components.Velocity{})
	k.World.AddTeam(id, components.Team{TeamID: components.TeamEnemies})
	k.World.AddHealth(id, components.NewHealth(entry.Health))
	k.World.AddCollider(id, components.NewCircleCollider(10))
	k.World.AddBoundary(id, components.Boundary{MinX: -200, MaxX: 1000, MinY: 0, MaxY: 600, Destroy: true})
	k.World.AddAIController(id, components.NewAIController())
	k.World.AddWeapon(id, components.Weapon{Cooldown: entry.FireCooldown})
	k.World.AddDamager(id, components.Damager{Damage: entry.Damage})
	return id, nil
}

// SpawnScriptedEnemy creates an enemy whose behavior is delegated entirely
// to a Lua script rather than a native AIController, per SPEC_FULL.md §3.
// It carries no AIController and no Weapon — any firing decision the
// script makes goes through spawn.projectile instead of the native firing
// phase. OnInit runs immediately if a scripting engine is wired.
func (k *Kernel) SpawnScriptedEnemy(x, y float64, scriptPath string) (ecs.EntityID, error) {
	id, err := k.World.CreateEntity()
	if err != nil {
		return 0, err
	}
	k.World.AddTransform(id, components.Transform{X: x, Y: y})
	k.World.AddVelocity(id, components.Velocity{})
	k.World.AddTeam(id, components.Team{TeamID: components.TeamEnemies})
	k.World.AddHealth(id, components.NewHealth(30))
	k.World.AddCollider(id, components.NewCircleCollider(10))
	k.World.AddBoundary(id, components.Boundary{MinX: -200, MaxX: 1000, MinY: 0, MaxY: 600, Destroy: true})
	k.World.AddScript(id, components.Script{Path: scriptPath, Enabled: true, Variables: map[string]float64{}})
	if k.scripts != nil {
		k.scripts.OnInit(id, scriptPath)
	}
	return id, nil
}

// SpawnProjectile is the exported form of spawnProjectile, called by the
// scripting engine's spawn.projectile binding.
func (k *Kernel) SpawnProjectile(x, y, vx, vy float64, team, damage int, owner ecs.EntityID) (ecs.EntityID, error) {
	return k.spawnProjectile(x, y, vx, vy, team, damage, owner)
}

// spawnProjectile creates a transient damaging entity moving at (vx, vy),
// inheriting team from its shooter so the collision system's team filter
// lets it pass through allies. owner credits a player's Score on a kill
// (zero for non-player-owned projectiles, e.g. enemy fire or a generic
// Spawner with no Team).
func (k *Kernel) spawnProjectile(x, y, vx, vy float64, team, damage int, owner ecs.EntityID) (ecs.EntityID, error) {
	id, err := k.World.CreateEntity()
	if err != nil {
		return 0, err
	}
	k.World.AddTransform(id, components.Transform{X: x, Y: y})
	k.World.AddVelocity(id, components.Velocity{VX: vx, VY: vy})
	k.World.AddTeam(id, components.Team{TeamID: team})
	k.World.AddCollider(id, components.NewCircleCollider(4))
	k.World.AddDamager(id, components.Damager{Damage: damage, Owner: uint64(owner)})
	k.World.AddLifetime(id, components.Lifetime{TimeLeft: 5})
	k.World.AddBoundary(id, components.Boundary{MinX: -50, MaxX: 1050, MinY: -50, MaxY: 650, Destroy: true})
	return id, nil
}
