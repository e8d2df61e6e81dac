// Package snapshot implements the Snapshot Builder of spec.md §4.8: once
// per tick, assemble the living-entity view of the world into a STATE
// packet per connected peer, stamped with a unique monotonic msgId
// recorded in that peer's pending-acks. Grounded on the Session
// Manager's pendingAcks bookkeeping and the Wire Codec's EncodeState.
package snapshot

import (
	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
	"github.com/r-type/server/internal/session"
	"github.com/r-type/server/internal/wire"
)

// Frame is one peer's ready-to-send STATE datagram.
type Frame struct {
	Addr    string
	Payload []byte
}

// Build enumerates the world once per tick and returns one STATE frame
// per session passed through peers. Per spec.md §4.8: Projectiles are
// team-agnostic and identified first by the Lifetime every spawned
// projectile carries (a powerup also carries a Lifetime, so it is
// reported in the projectile section too); everything else is classified
// by Team.teamId directly (0 = players, 1 = enemies), not by which
// other components the entity happens to carry. A projectile also
// carries a Team (the shooter's, for collision filtering), so Lifetime
// must be checked before Team or every player-owned shot would be
// misreported as a player.
func Build(w *ecs.World, mgr *session.Manager, tick uint32) []Frame {
	players, enemies, projectiles := collectEntities(w)

	frames := make([]Frame, 0, mgr.Count())
	mgr.ForEach(func(addr string, sess *session.Session) {
		msgID := sess.NextMsgID()
		payload := wire.EncodeState(msgID, tick, players, enemies, projectiles)
		frames = append(frames, Frame{Addr: addr, Payload: payload})
	})
	return frames
}

func collectEntities(w *ecs.World) (players, enemies, projectiles []wire.EntitySnapshot) {
	w.Transforms.Each(func(id ecs.EntityID, t *components.Transform) {
		if !w.Alive(id) {
			return
		}
		row := wire.EntitySnapshot{
			ID: id.Index(),
			X:  float32(t.X),
			Y:  float32(t.Y),
		}
		if hp, ok := w.Health(id); ok {
			row.HP = uint32(hp.Current)
		}

		if _, ok := w.Lifetime(id); ok {
			row.Kind = wire.KindProjectile
			projectiles = append(projectiles, row)
			return
		}
		team, ok := w.Team(id)
		if !ok {
			return
		}
		switch team.TeamID {
		case components.TeamEnemies:
			row.Kind = wire.KindEnemy
			enemies = append(enemies, row)
		case components.TeamPlayers:
			row.Kind = wire.KindPlayer
			players = append(players, row)
		}
	})
	return players, enemies, projectiles
}
