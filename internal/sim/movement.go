package sim

import "time"

// runMovementSystem integrates transform += velocity * dt for every
// entity that has both, per spec.md §4.6 step 4.
func (k *Kernel) runMovementSystem(dt time.Duration) {
	seconds := dt.Seconds()
	for _, id := range k.movers.Entities() {
		t, ok := k.World.Transform(id)
		if !ok {
			continue
		}
		v, ok := k.World.Velocity(id)
		if !ok {
			continue
		}
		t.X += v.VX * seconds
		t.Y += v.VY * seconds
	}
}
