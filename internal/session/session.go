// Package session implements the Session Manager: the peer-keyed table
// binding a UDP address to a player entity, its outstanding-ack
// bookkeeping, and its shoot cooldown. Grounded on the per-connection
// Session/Server pair in the teacher's internal/net package, generalized
// from a TCP-socket-owning struct to a plain data record — Transport
// owns the socket here, so a Session only tracks what the game loop
// needs to know about a peer.
package session

import (
	"time"

	"github.com/r-type/server/internal/core/ecs"
)

// Session is one connected player's bookkeeping, keyed by its peer
// address in the Manager. Nothing here is safe to touch from more than
// one goroutine: like the rest of the simulation, it is owned
// exclusively by the single-threaded game loop.
type Session struct {
	EntityID ecs.EntityID
	ClientID uint32

	LastSeen time.Time

	// ShootCooldown is the session's remaining fire cooldown in seconds,
	// decremented and checked by the Firing phase through SessionSource.
	ShootCooldown float64

	StartTime float64 // clock.Clock.Now() at HELLO, for elapsed-survival time

	PendingAcks map[uint32]struct{}
	nextMsgID   uint32
}

// NextMsgID returns the next monotonic snapshot message id for this
// session and records it as outstanding, per spec.md §4.8.
func (s *Session) NextMsgID() uint32 {
	s.nextMsgID++
	id := s.nextMsgID
	s.PendingAcks[id] = struct{}{}
	return id
}

// Ack clears a previously issued message id from the pending set. A
// stale or unknown id (e.g. already acked, or never issued) is a no-op —
// spec.md §4.7 notes acks exist only for metrics, not retransmission.
func (s *Session) Ack(msgID uint32) {
	delete(s.PendingAcks, msgID)
}
