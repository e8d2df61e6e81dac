package sim

import "time"

// runCleanupSystem fires on_destroy for any about-to-be-destroyed
// Script-driven entity, then flushes the deferred-destruction queue
// accumulated by every earlier phase this tick, per spec.md §4.6 step 12.
func (k *Kernel) runCleanupSystem(_ time.Duration) {
	if k.scripts != nil {
		for _, id := range k.World.PendingDestructions() {
			script, ok := k.World.Script(id)
			if !ok || !script.Enabled {
				continue
			}
			k.scripts.OnDestroy(id, script.Path)
		}
	}
	k.World.FlushDestroyQueue()
}
