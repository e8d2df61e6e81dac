package sim

import "time"

// runBoundarySystem enforces each entity's play-field bounds: wrap
// teleports to the opposite edge, destroy queues deferred destruction,
// and the remaining case clamps the position to the bound, per spec.md
// §4.6 step 5.
func (k *Kernel) runBoundarySystem(_ time.Duration) {
	for _, id := range k.bounded.Entities() {
		t, ok := k.World.Transform(id)
		if !ok {
			continue
		}
		b, ok := k.World.Boundary(id)
		if !ok {
			continue
		}

		outOfBounds := t.X < b.MinX || t.X > b.MaxX || t.Y < b.MinY || t.Y > b.MaxY
		if !outOfBounds {
			continue
		}

		switch {
		case b.Wrap:
			if t.X < b.MinX {
				t.X = b.MaxX
			} else if t.X > b.MaxX {
				t.X = b.MinX
			}
			if t.Y < b.MinY {
				t.Y = b.MaxY
			} else if t.Y > b.MaxY {
				t.Y = b.MinY
			}
		case b.Destroy:
			k.World.MarkForDestruction(id)
		default:
			if t.X < b.MinX {
				t.X = b.MinX
			} else if t.X > b.MaxX {
				t.X = b.MaxX
			}
			if t.Y < b.MinY {
				t.Y = b.MinY
			} else if t.Y > b.MaxY {
				t.Y = b.MaxY
			}
		}
	}
}
