package ecs

import "github.com/r-type/server/internal/components"

// SignatureObserver is notified whenever an entity's signature changes,
// so the System Registry can recompute working sets without World
// needing to know anything about systems.
type SignatureObserver func(id EntityID, sig Signature)

// World is the top-level ECS container. It owns the entity pool, one
// typed Store per component kind, a component registry for bulk cleanup,
// and a deferred destruction queue flushed by the cleanup phase each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	observers    []SignatureObserver

	Transforms    *Store[components.Transform]
	Velocities    *Store[components.Velocity]
	Inputs        *Store[components.PlayerInput]
	Teams         *Store[components.Team]
	Healths       *Store[components.Health]
	Damagers      *Store[components.Damager]
	Colliders     *Store[components.Collider]
	Lifetimes     *Store[components.Lifetime]
	Boundaries    *Store[components.Boundary]
	Spawners      *Store[components.Spawner]
	AIControllers *Store[components.AIController]
	PlayerTags    *Store[components.PlayerTag]
	Scripts       *Store[components.Script]
	Scores        *Store[components.Score]
	Weapons       *Store[components.Weapon]
}

func NewWorld() *World {
	return NewWorldWithCapacity(MaxEntities)
}

// NewWorldWithCapacity builds a World whose entity pool is capped at
// capacity live entities, so a deployment's configured entity capacity
// ceiling is enforced at the point entities are actually created.
func NewWorldWithCapacity(capacity int) *World {
	w := &World{
		pool:         NewEntityPoolWithCapacity(capacity),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),

		Transforms:    NewStore[components.Transform](),
		Velocities:    NewStore[components.Velocity](),
		Inputs:        NewStore[components.PlayerInput](),
		Teams:         NewStore[components.Team](),
		Healths:       NewStore[components.Health](),
		Damagers:      NewStore[components.Damager](),
		Colliders:     NewStore[components.Collider](),
		Lifetimes:     NewStore[components.Lifetime](),
		Boundaries:    NewStore[components.Boundary](),
		Spawners:      NewStore[components.Spawner](),
		AIControllers: NewStore[components.AIController](),
		PlayerTags:    NewStore[components.PlayerTag](),
		Scripts:       NewStore[components.Script](),
		Scores:        NewStore[components.Score](),
		Weapons:       NewStore[components.Weapon](),
	}
	w.registry.Register(w.Transforms)
	w.registry.Register(w.Velocities)
	w.registry.Register(w.Inputs)
	w.registry.Register(w.Teams)
	w.registry.Register(w.Healths)
	w.registry.Register(w.Damagers)
	w.registry.Register(w.Colliders)
	w.registry.Register(w.Lifetimes)
	w.registry.Register(w.Boundaries)
	w.registry.Register(w.Spawners)
	w.registry.Register(w.AIControllers)
	w.registry.Register(w.PlayerTags)
	w.registry.Register(w.Scripts)
	w.registry.Register(w.Scores)
	w.registry.Register(w.Weapons)
	return w
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// Observe registers fn to be called every time an entity's signature
// changes (component added or removed). Used by the System Registry to
// keep its working sets current without World importing it.
func (w *World) Observe(fn SignatureObserver) {
	w.observers = append(w.observers, fn)
}

func (w *World) notify(id EntityID) {
	sig := w.pool.Signature(id)
	for _, obs := range w.observers {
		obs(id, sig)
	}
}

// CreateEntity allocates a new entity with an empty signature.
func (w *World) CreateEntity() (EntityID, error) {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

func (w *World) Signature(id EntityID) Signature {
	return w.pool.Signature(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestructions returns the entities queued for destruction this
// tick, before FlushDestroyQueue clears their components. Used by
// phases that need to react to a destruction (e.g. firing an on_destroy
// script hook) before the entity's data disappears.
func (w *World) PendingDestructions() []EntityID {
	return w.destroyQueue
}

// FlushDestroyQueue destroys all queued entities, clears their
// components, and notifies observers with a zero signature so working
// sets drop them. Called by the cleanup phase at the end of each tick.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		w.notify(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

func attach[T any](w *World, s *Store[T], bit Signature, id EntityID, v T) error {
	if err := s.Insert(id, v); err != nil {
		return err
	}
	w.pool.SetSignature(id, w.pool.Signature(id).Set(bit))
	w.notify(id)
	return nil
}

func detach[T any](w *World, s *Store[T], bit Signature, id EntityID) error {
	if err := s.RemoveErr(id); err != nil {
		return err
	}
	w.pool.SetSignature(id, w.pool.Signature(id).Clear(bit))
	w.notify(id)
	return nil
}

func (w *World) AddTransform(id EntityID, v components.Transform) error {
	return attach(w, w.Transforms, BitTransform, id, v)
}
func (w *World) RemoveTransform(id EntityID) error { return detach(w, w.Transforms, BitTransform, id) }
func (w *World) Transform(id EntityID) (*components.Transform, bool) { return w.Transforms.Get(id) }

func (w *World) AddVelocity(id EntityID, v components.Velocity) error {
	return attach(w, w.Velocities, BitVelocity, id, v)
}
func (w *World) RemoveVelocity(id EntityID) error { return detach(w, w.Velocities, BitVelocity, id) }
func (w *World) Velocity(id EntityID) (*components.Velocity, bool) { return w.Velocities.Get(id) }

func (w *World) AddInput(id EntityID, v components.PlayerInput) error {
	return attach(w, w.Inputs, BitPlayerInput, id, v)
}
func (w *World) RemoveInput(id EntityID) error { return detach(w, w.Inputs, BitPlayerInput, id) }
func (w *World) Input(id EntityID) (*components.PlayerInput, bool) { return w.Inputs.Get(id) }

func (w *World) AddTeam(id EntityID, v components.Team) error {
	return attach(w, w.Teams, BitTeam, id, v)
}
func (w *World) RemoveTeam(id EntityID) error { return detach(w, w.Teams, BitTeam, id) }
func (w *World) Team(id EntityID) (*components.Team, bool) { return w.Teams.Get(id) }

func (w *World) AddHealth(id EntityID, v components.Health) error {
	return attach(w, w.Healths, BitHealth, id, v)
}
func (w *World) RemoveHealth(id EntityID) error { return detach(w, w.Healths, BitHealth, id) }
func (w *World) Health(id EntityID) (*components.Health, bool) { return w.Healths.Get(id) }

func (w *World) AddDamager(id EntityID, v components.Damager) error {
	return attach(w, w.Damagers, BitDamager, id, v)
}
func (w *World) RemoveDamager(id EntityID) error { return detach(w, w.Damagers, BitDamager, id) }
func (w *World) Damager(id EntityID) (*components.Damager, bool) { return w.Damagers.Get(id) }

func (w *World) AddCollider(id EntityID, v components.Collider) error {
	return attach(w, w.Colliders, BitCollider, id, v)
}
func (w *World) RemoveCollider(id EntityID) error { return detach(w, w.Colliders, BitCollider, id) }
func (w *World) Collider(id EntityID) (*components.Collider, bool) { return w.Colliders.Get(id) }

func (w *World) AddLifetime(id EntityID, v components.Lifetime) error {
	return attach(w, w.Lifetimes, BitLifetime, id, v)
}
func (w *World) RemoveLifetime(id EntityID) error { return detach(w, w.Lifetimes, BitLifetime, id) }
func (w *World) Lifetime(id EntityID) (*components.Lifetime, bool) { return w.Lifetimes.Get(id) }

func (w *World) AddBoundary(id EntityID, v components.Boundary) error {
	return attach(w, w.Boundaries, BitBoundary, id, v)
}
func (w *World) RemoveBoundary(id EntityID) error { return detach(w, w.Boundaries, BitBoundary, id) }
func (w *World) Boundary(id EntityID) (*components.Boundary, bool) { return w.Boundaries.Get(id) }

func (w *World) AddSpawner(id EntityID, v components.Spawner) error {
	return attach(w, w.Spawners, BitSpawner, id, v)
}
func (w *World) RemoveSpawner(id EntityID) error { return detach(w, w.Spawners, BitSpawner, id) }
func (w *World) Spawner(id EntityID) (*components.Spawner, bool) { return w.Spawners.Get(id) }

func (w *World) AddAIController(id EntityID, v components.AIController) error {
	return attach(w, w.AIControllers, BitAIController, id, v)
}
func (w *World) RemoveAIController(id EntityID) error {
	return detach(w, w.AIControllers, BitAIController, id)
}
func (w *World) AIController(id EntityID) (*components.AIController, bool) {
	return w.AIControllers.Get(id)
}

func (w *World) AddPlayerTag(id EntityID, v components.PlayerTag) error {
	return attach(w, w.PlayerTags, BitPlayerTag, id, v)
}
func (w *World) RemovePlayerTag(id EntityID) error { return detach(w, w.PlayerTags, BitPlayerTag, id) }
func (w *World) PlayerTag(id EntityID) (*components.PlayerTag, bool) { return w.PlayerTags.Get(id) }

func (w *World) AddScript(id EntityID, v components.Script) error {
	return attach(w, w.Scripts, BitScript, id, v)
}
func (w *World) RemoveScript(id EntityID) error { return detach(w, w.Scripts, BitScript, id) }
func (w *World) Script(id EntityID) (*components.Script, bool) { return w.Scripts.Get(id) }

func (w *World) AddWeapon(id EntityID, v components.Weapon) error {
	return attach(w, w.Weapons, BitWeapon, id, v)
}
func (w *World) RemoveWeapon(id EntityID) error { return detach(w, w.Weapons, BitWeapon, id) }
func (w *World) Weapon(id EntityID) (*components.Weapon, bool) { return w.Weapons.Get(id) }

// Score carries no signature bit: it is bookkeeping for the snapshot
// builder and session manager, not something any system queries by
// signature, so it is inserted/removed directly on its Store.
func (w *World) AddScore(id EntityID, v components.Score) error {
	return w.Scores.Insert(id, v)
}
func (w *World) Score(id EntityID) (*components.Score, bool) { return w.Scores.Get(id) }
