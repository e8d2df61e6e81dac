package sim

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
	"github.com/r-type/server/internal/core/event"
	"github.com/r-type/server/internal/data"
)

type fixedRNG struct{ v float64 }

func (f fixedRNG) Float64() float64 { return f.v }
func (f fixedRNG) Intn(n int) int   { return 0 }

func newTestKernel() *Kernel {
	w := ecs.NewWorld()
	bus := event.NewBus()
	return NewKernel(w, bus, fixedRNG{v: 0.5})
}

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestInputToMotion(t *testing.T) {
	k := newTestKernel()
	id, err := k.SpawnPlayer(1)
	if err != nil {
		t.Fatal(err)
	}
	in, _ := k.World.Input(id)
	in.Direction = 6 // right

	for i := 0; i < 60; i++ {
		k.Step()
	}

	tr, _ := k.World.Transform(id)
	gotDX := tr.X - DefaultPlayerX
	wantDX := PlayerSpeed * 1.0
	if !almostEqual(gotDX, wantDX, 0.01) {
		t.Fatalf("dx = %v, want %v", gotDX, wantDX)
	}
	if !almostEqual(tr.Y, DefaultPlayerY, 0.0001) {
		t.Fatalf("y drifted: %v", tr.Y)
	}
}

func countProjectiles(k *Kernel) int {
	n := 0
	k.World.Teams.Each(func(id ecs.EntityID, _ *components.Team) {
		if _, ok := k.World.Damager(id); ok {
			if _, hasAI := k.World.AIController(id); !hasAI {
				if _, hasTag := k.World.PlayerTag(id); !hasTag {
					n++
				}
			}
		}
	})
	return n
}

func TestFireCooldown(t *testing.T) {
	k := newTestKernel()
	id, _ := k.SpawnPlayer(1)
	cooldown := 0.0
	sessions := &fakeSessionSource{entities: map[ecs.EntityID]*float64{id: &cooldown}}
	k.SetSessions(sessions)

	in, _ := k.World.Input(id)
	in.FirePressed = true

	stepSeconds := func(seconds float64) {
		ticksToRun := int(seconds/TickDeltaSeconds + 0.5)
		for i := 0; i < ticksToRun; i++ {
			k.Step()
		}
	}

	stepSeconds(0.1) // first shot fires immediately (cooldown starts at 0)
	if got := countProjectiles(k); got != 1 {
		t.Fatalf("after 0.1s: %d projectiles, want 1", got)
	}

	stepSeconds(0.1) // total 0.2s since fire, cooldown 0.3s not yet elapsed
	if got := countProjectiles(k); got != 1 {
		t.Fatalf("after 0.2s: %d projectiles, want 1 (still cooling down)", got)
	}

	stepSeconds(0.25) // total 0.45s since fire: cooldown (0.3s) elapsed, should fire again
	if got := countProjectiles(k); got != 2 {
		t.Fatalf("after 0.45s: %d projectiles, want 2", got)
	}
}

type fakeSessionSource struct {
	entities map[ecs.EntityID]*float64
}

func (f *fakeSessionSource) ForEachPlayer(fn func(ecs.EntityID, *float64)) {
	for id, cd := range f.entities {
		fn(id, cd)
	}
}

func TestProjectileKillsEnemy(t *testing.T) {
	k := newTestKernel()
	enemy, _ := k.spawnEnemyAt(100, 100, data.WaveEntry{Health: 30, Damage: EnemyProjectileDamage, FireCooldown: EnemyFireCooldown, Weight: 1})
	hp, _ := k.World.Health(enemy)
	hp.Current = 1

	player, _ := k.SpawnPlayer(1)
	k.spawnProjectile(95, 100, PlayerProjectileSpeed, 0, components.TeamPlayers, PlayerProjectileDamage, player)

	for i := 0; i < 3; i++ {
		k.Step()
	}

	if k.World.Alive(enemy) {
		t.Fatal("expected enemy destroyed")
	}
	score, ok := k.World.Score(player)
	if !ok || score.Points == 0 {
		t.Fatalf("expected player score to increase, got %+v", score)
	}
}

func TestBoundaryDestroyPolicy(t *testing.T) {
	k := newTestKernel()
	id, err := k.World.CreateEntity()
	if err != nil {
		t.Fatal(err)
	}
	k.World.AddTransform(id, components.Transform{X: -10, Y: 0})
	k.World.AddBoundary(id, components.Boundary{MinX: 0, MaxX: 800, MinY: 0, MaxY: 600, Destroy: true})

	k.Step()
	if k.World.Alive(id) {
		t.Fatal("expected out-of-bounds destroy-policy entity to be destroyed")
	}
}

func TestBoundaryWrapPolicy(t *testing.T) {
	k := newTestKernel()
	id, err := k.World.CreateEntity()
	if err != nil {
		t.Fatal(err)
	}
	k.World.AddTransform(id, components.Transform{X: -5, Y: 300})
	k.World.AddBoundary(id, components.Boundary{MinX: 0, MaxX: 800, MinY: 0, MaxY: 600, Wrap: true})

	k.Step()
	tr, _ := k.World.Transform(id)
	if tr.X != 800 {
		t.Fatalf("x = %v, want wrapped to 800", tr.X)
	}
}

func TestInvincibilityWindow(t *testing.T) {
	k := newTestKernel()
	a, _ := k.World.CreateEntity()
	k.World.AddTransform(a, components.Transform{X: 0, Y: 0})
	k.World.AddCollider(a, components.NewCircleCollider(50))
	k.World.AddTeam(a, components.Team{TeamID: 0})
	k.World.AddHealth(a, components.NewHealth(1000))

	b, _ := k.World.CreateEntity()
	k.World.AddTransform(b, components.Transform{X: 0, Y: 0})
	k.World.AddCollider(b, components.Collider{ShapeKind: components.ShapeCircle, Radius: 50, IsTrigger: true})
	k.World.AddTeam(b, components.Team{TeamID: 1})
	k.World.AddDamager(b, components.Damager{Damage: 5})

	k.Step()
	hp, _ := k.World.Health(a)
	afterFirstHit := hp.Current
	if afterFirstHit != 995 {
		t.Fatalf("hp after first hit = %d, want 995", afterFirstHit)
	}

	// Within the 0.5s invincibility window, further ticks must not re-damage.
	for i := 0; i < 20; i++ {
		k.Step()
	}
	hp, _ = k.World.Health(a)
	if hp.Current != afterFirstHit {
		t.Fatalf("hp = %d during invincibility window, want unchanged %d", hp.Current, afterFirstHit)
	}
}

func TestSameTeamNeverDamages(t *testing.T) {
	k := newTestKernel()
	a, _ := k.World.CreateEntity()
	k.World.AddTransform(a, components.Transform{})
	k.World.AddCollider(a, components.NewCircleCollider(20))
	k.World.AddTeam(a, components.Team{TeamID: 0})
	k.World.AddHealth(a, components.NewHealth(10))

	b, _ := k.World.CreateEntity()
	k.World.AddTransform(b, components.Transform{})
	k.World.AddCollider(b, components.NewCircleCollider(20))
	k.World.AddTeam(b, components.Team{TeamID: 0})
	k.World.AddDamager(b, components.Damager{Damage: 5})

	k.Step()
	hp, _ := k.World.Health(a)
	if hp.Current != 10 {
		t.Fatalf("same-team damager dealt damage: hp = %d", hp.Current)
	}
}

func TestDeterministicTickOrdering(t *testing.T) {
	run := func() []byte {
		k := newTestKernel()
		id, _ := k.SpawnPlayer(1)
		in, _ := k.World.Input(id)
		in.Direction = 9
		in.FirePressed = true
		var out []byte
		for i := 0; i < 30; i++ {
			k.Step()
			tr, _ := k.World.Transform(id)
			var buf [8]byte
			binary.BigEndian.PutUint32(buf[0:4], uint32(int32(tr.X*1000)))
			binary.BigEndian.PutUint32(buf[4:8], uint32(int32(tr.Y*1000)))
			out = append(out, buf[:]...)
		}
		return out
	}
	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}
