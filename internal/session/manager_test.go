package session

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/r-type/server/internal/clock"
	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
)

type stubFactory struct {
	w         *ecs.World
	nextErr   error
	spawnedAt []uint32
}

func (f *stubFactory) SpawnPlayer(clientID uint32) (ecs.EntityID, error) {
	if f.nextErr != nil {
		return 0, f.nextErr
	}
	f.spawnedAt = append(f.spawnedAt, clientID)
	id, err := f.w.CreateEntity()
	if err != nil {
		return 0, err
	}
	f.w.AddInput(id, components.PlayerInput{Direction: components.DirIdle})
	f.w.AddPlayerTag(id, components.PlayerTag{ClientID: clientID})
	return id, nil
}

func newTestManager(t *testing.T) (*Manager, *ecs.World, *stubFactory) {
	t.Helper()
	w := ecs.NewWorld()
	factory := &stubFactory{w: w}
	log := zap.NewNop()
	m := NewManager(w, factory, clock.NewFake(), log)
	return m, w, factory
}

func addr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
}

func TestHelloAllocatesEntityAndIsIdempotent(t *testing.T) {
	m, _, factory := newTestManager(t)
	peer := addr(5000)

	first, ok := m.HandleHello(peer)
	if !ok {
		t.Fatal("expected hello to succeed")
	}
	second, ok := m.HandleHello(peer)
	if !ok {
		t.Fatal("expected duplicate hello to succeed")
	}
	if first.EntityID != second.EntityID {
		t.Fatalf("duplicate hello from known peer allocated a new entity: %v vs %v", first.EntityID, second.EntityID)
	}
	if len(factory.spawnedAt) != 1 {
		t.Fatalf("expected exactly one spawn, got %d", len(factory.spawnedAt))
	}
}

func TestHelloRefusedWhenCapacityExhausted(t *testing.T) {
	m, _, factory := newTestManager(t)
	factory.nextErr = ecs.ErrCapacityExceeded

	_, ok := m.HandleHello(addr(5001))
	if ok {
		t.Fatal("expected hello to be refused")
	}
	if m.Count() != 0 {
		t.Fatalf("expected no session recorded, got %d", m.Count())
	}
}

func TestInputUpdatesBoundEntity(t *testing.T) {
	m, w, _ := newTestManager(t)
	peer := addr(5002)
	sess, _ := m.HandleHello(peer)

	m.HandleInput(peer, 6, true)

	in, ok := w.Input(sess.EntityID)
	if !ok {
		t.Fatal("expected input component present")
	}
	if in.Direction != 6 || !in.FirePressed {
		t.Fatalf("input not applied: %+v", in)
	}
}

func TestInputFromUnknownPeerIsDropped(t *testing.T) {
	m, _, _ := newTestManager(t)
	// Should not panic or create a session for an unrecognized peer.
	m.HandleInput(addr(5003), 6, true)
	if m.Count() != 0 {
		t.Fatalf("expected no session created, got %d", m.Count())
	}
}

func TestAckClearsPendingSet(t *testing.T) {
	m, _, _ := newTestManager(t)
	peer := addr(5004)
	sess, _ := m.HandleHello(peer)

	id := sess.NextMsgID()
	if _, pending := sess.PendingAcks[id]; !pending {
		t.Fatal("expected msgId to be recorded as pending")
	}

	m.HandleAck(peer, id)
	if _, pending := sess.PendingAcks[id]; pending {
		t.Fatal("expected msgId to be cleared after ack")
	}
}

func TestReapIdleDestroysEntityAndPurgesSession(t *testing.T) {
	m, w, _ := newTestManager(t)
	peer := addr(5005)
	sess, _ := m.HandleHello(peer)
	sess.LastSeen = time.Now().Add(-1 * time.Hour)

	reaped := m.ReapIdle(10 * time.Second)
	if len(reaped) != 1 || reaped[0] != peer.String() {
		t.Fatalf("expected %s reaped, got %v", peer.String(), reaped)
	}
	if m.Count() != 0 {
		t.Fatalf("expected session purged, got %d remaining", m.Count())
	}
	w.FlushDestroyQueue()
	if w.Alive(sess.EntityID) {
		t.Fatal("expected entity destroyed after idle reap")
	}
}

func TestForEachPlayerExposesCooldownByReference(t *testing.T) {
	m, _, _ := newTestManager(t)
	peer := addr(5006)
	sess, _ := m.HandleHello(peer)

	m.ForEachPlayer(func(id ecs.EntityID, cooldown *float64) {
		*cooldown = 0.3
	})
	if sess.ShootCooldown != 0.3 {
		t.Fatalf("cooldown = %v, want 0.3", sess.ShootCooldown)
	}
}
