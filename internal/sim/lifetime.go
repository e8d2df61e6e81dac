package sim

import "time"

// runLifetimeSystem ages out transient entities (mainly projectiles),
// per spec.md §4.6 step 9.
func (k *Kernel) runLifetimeSystem(dt time.Duration) {
	seconds := dt.Seconds()
	for _, id := range k.timedLived.Entities() {
		lt, ok := k.World.Lifetime(id)
		if !ok {
			continue
		}
		lt.TimeLeft -= seconds
		if lt.TimeLeft <= 0 {
			k.World.MarkForDestruction(id)
		}
	}
}
