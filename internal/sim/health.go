package sim

import "time"

// runHealthSystem decrements the invincibility timer and queues
// destruction for anything at or below zero HP, per spec.md §4.6 step 8.
func (k *Kernel) runHealthSystem(dt time.Duration) {
	seconds := dt.Seconds()
	for _, id := range k.healthy.Entities() {
		hp, ok := k.World.Health(id)
		if !ok {
			continue
		}
		if hp.InvincibilityTimer > 0 {
			hp.InvincibilityTimer -= seconds
			if hp.InvincibilityTimer < 0 {
				hp.InvincibilityTimer = 0
			}
		}
		if hp.Current <= 0 {
			k.World.MarkForDestruction(id)
		}
	}
}
