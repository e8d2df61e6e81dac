package ecs

import "errors"

// ErrCapacityExceeded is returned by EntityPool.Create once the pool's
// capacity (MaxEntities unless configured otherwise) of live entities is
// already allocated.
var ErrCapacityExceeded = errors.New("ecs: entity capacity exceeded")

// ErrComponentMissing is returned by a Store's RemoveErr when the entity
// does not carry that component. Get reports absence through its bool
// result instead, and Remove discards this error.
var ErrComponentMissing = errors.New("ecs: component missing")

// ErrComponentPresent is returned by a Store's Insert when the entity
// already carries that component.
var ErrComponentPresent = errors.New("ecs: component already present")

// ErrEntityDead names an operation on a non-alive EntityID. No function in
// this package returns it.
var ErrEntityDead = errors.New("ecs: entity not alive")
