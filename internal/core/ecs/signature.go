package ecs

// Signature is a bitmask over component kinds. A system's required
// signature is matched against an entity's signature with a plain AND —
// the entity qualifies when every required bit is set.
type Signature uint64

// Component bit positions. Fixed and stable: persisted nowhere, but kept
// constant within a process so a Signature computed at one point in the
// tick remains meaningful later in the same tick.
const (
	BitTransform Signature = 1 << iota
	BitVelocity
	BitPlayerInput
	BitTeam
	BitHealth
	BitDamager
	BitCollider
	BitLifetime
	BitBoundary
	BitSpawner
	BitAIController
	BitPlayerTag
	BitScript
	BitWeapon
)

// Has reports whether sig carries every bit set in required.
func (sig Signature) Has(required Signature) bool {
	return sig&required == required
}

// Set returns sig with bit set.
func (sig Signature) Set(bit Signature) Signature { return sig | bit }

// Clear returns sig with bit cleared.
func (sig Signature) Clear(bit Signature) Signature { return sig &^ bit }
