package system

import "github.com/r-type/server/internal/core/ecs"

// WorkingSet is the insertion-ordered list of entities whose signature
// currently satisfies a required signature. A System that needs one asks
// the Registry for it once at construction time and reads Entities()
// every Update call; the Registry keeps it current as entities gain or
// lose components.
type WorkingSet struct {
	required ecs.Signature
	members  []ecs.EntityID
	index    map[ecs.EntityID]int
}

func (ws *WorkingSet) Entities() []ecs.EntityID { return ws.members }

func (ws *WorkingSet) has(id ecs.EntityID) bool {
	_, ok := ws.index[id]
	return ok
}

func (ws *WorkingSet) add(id ecs.EntityID) {
	ws.index[id] = len(ws.members)
	ws.members = append(ws.members, id)
}

// remove preserves insertion order of the remaining members.
func (ws *WorkingSet) remove(id ecs.EntityID) {
	idx, ok := ws.index[id]
	if !ok {
		return
	}
	ws.members = append(ws.members[:idx], ws.members[idx+1:]...)
	delete(ws.index, id)
	for i := idx; i < len(ws.members); i++ {
		ws.index[ws.members[i]] = i
	}
}

func (ws *WorkingSet) update(id ecs.EntityID, sig ecs.Signature) {
	matches := ws.required != 0 && sig.Has(ws.required)
	present := ws.has(id)
	switch {
	case matches && !present:
		ws.add(id)
	case !matches && present:
		ws.remove(id)
	}
}

// Registry maintains every System's WorkingSet, recomputed whenever an
// entity's signature changes. It has no notion of Phase or execution
// order — that's the Runner's job; the Registry only answers "which
// entities does this system care about right now."
type Registry struct {
	sets []*WorkingSet
}

func NewRegistry() *Registry {
	return &Registry{}
}

// NewWorkingSet registers a working set for the given required signature
// and returns it. Call this once per system at setup time.
func (r *Registry) NewWorkingSet(required ecs.Signature) *WorkingSet {
	ws := &WorkingSet{required: required, index: make(map[ecs.EntityID]int)}
	r.sets = append(r.sets, ws)
	return ws
}

// Observer returns the ecs.SignatureObserver to pass to World.Observe so
// every working set stays in sync with component add/remove calls.
func (r *Registry) Observer() ecs.SignatureObserver {
	return func(id ecs.EntityID, sig ecs.Signature) {
		for _, ws := range r.sets {
			ws.update(id, sig)
		}
	}
}
