package sim

import (
	"time"

	"github.com/r-type/server/internal/data"
)

// runWaveSpawnSystem introduces a new enemy at the right edge of the
// play field once the global spawn timer exceeds its interval, per
// spec.md §4.6 step 11. The Y coordinate and the enemy archetype are
// both randomized via the Kernel's RNG collaborator, the latter weighted
// per the configured wave table.
func (k *Kernel) runWaveSpawnSystem(dt time.Duration) {
	k.enemySpawnTimer += dt.Seconds()
	if k.enemySpawnTimer < EnemySpawnInterval {
		return
	}
	k.enemySpawnTimer = 0

	y := EnemySpawnMinY
	if k.RNG != nil {
		y += k.RNG.Float64() * (EnemySpawnMaxY - EnemySpawnMinY)
	}

	k.spawnEnemyAt(EnemySpawnEdgeX, y, k.pickWaveEntry())
}

// pickWaveEntry draws one archetype from the configured wave table,
// weighted by Pick when an RNG collaborator is wired, falling back to
// the table's first entry otherwise (e.g. in tests with no RNG).
func (k *Kernel) pickWaveEntry() data.WaveEntry {
	if k.RNG != nil {
		return k.waves.Pick(k.RNG)
	}
	return k.waves.Entries[0]
}
