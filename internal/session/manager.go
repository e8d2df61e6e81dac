package session

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/r-type/server/internal/clock"
	"github.com/r-type/server/internal/core/ecs"
)

// EntityFactory spawns the ECS entity a new session is bound to. Satisfied
// by *sim.Kernel; kept as a narrow interface here so session never needs
// to import sim (sim already depends on session's SessionSource contract
// the other way around).
type EntityFactory interface {
	SpawnPlayer(clientID uint32) (ecs.EntityID, error)
}

// Manager is the Session Manager of spec.md §4.7: a peer-address-keyed
// table of Sessions, the single owner of HELLO/INPUT/ACK/idle-reap
// handling. It is not safe for concurrent use — like the rest of the
// simulation, it is driven exclusively from the single-threaded game
// loop described in spec.md §5.
type Manager struct {
	world   *ecs.World
	factory EntityFactory
	clk     clock.Clock
	log     *zap.Logger

	sessions     map[string]*Session
	nextClientID uint32
}

func NewManager(world *ecs.World, factory EntityFactory, clk clock.Clock, log *zap.Logger) *Manager {
	return &Manager{
		world:    world,
		factory:  factory,
		clk:      clk,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// HandleHello allocates a player entity for a previously unseen peer, or
// returns the existing session unchanged if the peer already has one —
// spec.md §4.7's "duplicate HELLO from a known peer returns the same
// WELCOME (idempotent)". ok is false only when the entity pool is full
// (spec.md §5's capacity-exhausted refusal: no WELCOME is sent, and the
// caller must not reply).
func (m *Manager) HandleHello(addr *net.UDPAddr) (sess *Session, ok bool) {
	key := addr.String()
	if existing, found := m.sessions[key]; found {
		existing.LastSeen = time.Now()
		return existing, true
	}

	m.nextClientID++
	clientID := m.nextClientID

	id, err := m.factory.SpawnPlayer(clientID)
	if err != nil {
		m.log.Warn("hello refused: entity pool exhausted", zap.String("peer", key), zap.Error(err))
		return nil, false
	}

	sess = &Session{
		EntityID:    id,
		ClientID:    clientID,
		LastSeen:    time.Now(),
		StartTime:   m.clk.Now(),
		PendingAcks: make(map[uint32]struct{}),
	}
	m.sessions[key] = sess
	m.log.Info("player joined", zap.String("peer", key), zap.Uint32("clientId", clientID))
	return sess, true
}

// HandleInput applies a decoded INPUT packet to the bound entity's
// PlayerInput component. An unknown peer is dropped silently, per
// spec.md §4.7.
func (m *Manager) HandleInput(addr *net.UDPAddr, direction uint8, firePressed bool) {
	sess, ok := m.sessions[addr.String()]
	if !ok {
		return
	}
	sess.LastSeen = time.Now()

	input, ok := m.world.Input(sess.EntityID)
	if !ok {
		return
	}
	input.Direction = direction
	input.FirePressed = firePressed
}

// HandleAck clears msgID from the peer's pending-ack set. Unknown peer
// or unknown id is a no-op.
func (m *Manager) HandleAck(addr *net.UDPAddr, msgID uint32) {
	if sess, ok := m.sessions[addr.String()]; ok {
		sess.Ack(msgID)
	}
}

// Touch records that a peer was heard from, without decoding a specific
// opcode — used for any frame that reaches the session layer.
func (m *Manager) Touch(addr *net.UDPAddr) {
	if sess, ok := m.sessions[addr.String()]; ok {
		sess.LastSeen = time.Now()
	}
}

// ReapIdle destroys the player entity and removes the session for every
// peer silent past threshold, per spec.md §4.7's idle-reap rule. Returns
// the addresses reaped; the game loop in cmd/rtypeserver logs them.
func (m *Manager) ReapIdle(threshold time.Duration) []string {
	now := time.Now()
	var reaped []string
	for key, sess := range m.sessions {
		if now.Sub(sess.LastSeen) <= threshold {
			continue
		}
		m.world.MarkForDestruction(sess.EntityID)
		delete(m.sessions, key)
		reaped = append(reaped, key)
		m.log.Info("player idle-reaped", zap.String("peer", key), zap.Uint32("clientId", sess.ClientID))
	}
	return reaped
}

// Lookup returns the session bound to addr, if any.
func (m *Manager) Lookup(addr *net.UDPAddr) (*Session, bool) {
	sess, ok := m.sessions[addr.String()]
	return sess, ok
}

// Count returns the number of connected sessions.
func (m *Manager) Count() int { return len(m.sessions) }

// ForEach iterates every connected session, keyed by peer address
// string. The callback must not mutate the Manager's session table.
func (m *Manager) ForEach(fn func(addr string, sess *Session)) {
	for key, sess := range m.sessions {
		fn(key, sess)
	}
}

// ForEachPlayer satisfies sim.SessionSource, giving the Firing phase
// direct access to each live player's shoot cooldown without sim
// importing session.
func (m *Manager) ForEachPlayer(fn func(entityID ecs.EntityID, cooldown *float64)) {
	for _, sess := range m.sessions {
		fn(sess.EntityID, &sess.ShootCooldown)
	}
}
