package system

import (
	"testing"

	"github.com/r-type/server/internal/components"
	"github.com/r-type/server/internal/core/ecs"
)

func TestWorkingSetTracksMembership(t *testing.T) {
	w := ecs.NewWorld()
	reg := NewRegistry()
	w.Observe(reg.Observer())

	moversRequired := ecs.BitTransform | ecs.BitVelocity
	movers := reg.NewWorkingSet(moversRequired)

	a, _ := w.CreateEntity()
	w.AddTransform(a, components.Transform{})
	if len(movers.Entities()) != 0 {
		t.Fatalf("entity with only Transform should not be a mover yet")
	}
	w.AddVelocity(a, components.Velocity{VX: 1})
	if got := movers.Entities(); len(got) != 1 || got[0] != a {
		t.Fatalf("expected entity %v in working set, got %v", a, got)
	}

	b, _ := w.CreateEntity()
	w.AddTransform(b, components.Transform{})
	w.AddVelocity(b, components.Velocity{})
	if got := movers.Entities(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("expected insertion order [a,b], got %v", got)
	}

	w.RemoveVelocity(a)
	if got := movers.Entities(); len(got) != 1 || got[0] != b {
		t.Fatalf("expected only b remaining, got %v", got)
	}
}

func TestWorkingSetDropsOnDestroy(t *testing.T) {
	w := ecs.NewWorld()
	reg := NewRegistry()
	w.Observe(reg.Observer())
	ws := reg.NewWorkingSet(ecs.BitHealth)

	id, _ := w.CreateEntity()
	w.AddHealth(id, components.NewHealth(10))
	if len(ws.Entities()) != 1 {
		t.Fatal("expected entity in working set")
	}

	w.MarkForDestruction(id)
	w.FlushDestroyQueue()
	if len(ws.Entities()) != 0 {
		t.Fatalf("expected working set empty after destroy, got %v", ws.Entities())
	}
}
