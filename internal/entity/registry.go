package entity

// Registry owns every live entity by GUID. It is not safe for concurrent
// use: the world thread is the sole owner and mutator, per the
// concurrency model's "external readers must not exist" rule for the
// world registry's indexes.
type Registry struct {
	alloc    *Allocator
	entities map[GUID]*Entity
}

func NewRegistry() *Registry {
	return &Registry{
		alloc:    NewAllocator(),
		entities: make(map[GUID]*Entity),
	}
}

// CreatePlayer allocates a player GUID, constructs the entity, and registers it.
func (r *Registry) CreatePlayer(name string) *Entity {
	e := New(r.alloc.NextPlayer(), KindPlayer, name)
	r.entities[e.GUID] = e
	return e
}

// CreateNPC allocates an NPC GUID, constructs the entity, and registers it.
func (r *Registry) CreateNPC(name string) *Entity {
	e := New(r.alloc.NextNPC(), KindNPC, name)
	r.entities[e.GUID] = e
	return e
}

// Get returns the live entity for guid, or nil if it is not registered.
func (r *Registry) Get(guid GUID) *Entity {
	return r.entities[guid]
}

// Alive reports whether guid is currently registered and not dead.
func (r *Registry) Alive(guid GUID) bool {
	e := r.entities[guid]
	return e != nil && !e.Dead
}

// Remove deletes guid from the registry. Idempotent: removing a GUID
// that is not present is a no-op.
func (r *Registry) Remove(guid GUID) {
	delete(r.entities, guid)
}

// Each calls fn for every live entity. fn must not mutate the registry.
func (r *Registry) Each(fn func(*Entity)) {
	for _, e := range r.entities {
		fn(e)
	}
}

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	return len(r.entities)
}
