package world

import "github.com/dreadmyst/server/internal/entity"

// Registry owns the set of live NPCs and indexes players and NPCs by
// map. It is mutated only by the world-update loop; there
// are no external readers and no locking.
type Registry struct {
	viewDistance float64 // 0 = unbounded same-map visibility
	grid         *cellGrid

	players      map[entity.GUID]*entity.Entity
	npcs         map[entity.GUID]*entity.Entity
	byMapPlayers map[int]map[entity.GUID]struct{}
	byMapNPCs    map[int]map[entity.GUID]struct{}

	// visible tracks, for each player viewer, the set of GUIDs (players
	// and NPCs) currently known visible — the hysteresis "is currently
	// shown" state that UpdateVisibility/OnPlayerMoved diff against.
	visible map[entity.GUID]map[entity.GUID]struct{}
}

// NewRegistry constructs a registry. viewDistance 0 means every player
// on the same map is mutually visible, matching the source's documented
// default; a positive value enables the Euclidean hysteresis path.
func NewRegistry(viewDistance float64) *Registry {
	// The cell size must cover the leave-hysteresis radius, not just the
	// base view distance, so a 3x3 neighbourhood scan never misses an
	// entity the hysteresis band still considers visible.
	cellSize := viewDistance
	if viewDistance > 0 {
		cellSize = viewDistance + 4
	}
	return &Registry{
		viewDistance: viewDistance,
		grid:         newCellGrid(cellSize),
		players:      make(map[entity.GUID]*entity.Entity),
		npcs:         make(map[entity.GUID]*entity.Entity),
		byMapPlayers: make(map[int]map[entity.GUID]struct{}),
		byMapNPCs:    make(map[int]map[entity.GUID]struct{}),
		visible:      make(map[entity.GUID]map[entity.GUID]struct{}),
	}
}

func (r *Registry) addToMapIndex(idx map[int]map[entity.GUID]struct{}, mapID int, guid entity.GUID) {
	set := idx[mapID]
	if set == nil {
		set = make(map[entity.GUID]struct{})
		idx[mapID] = set
	}
	set[guid] = struct{}{}
}

func (r *Registry) removeFromMapIndex(idx map[int]map[entity.GUID]struct{}, mapID int, guid entity.GUID) {
	set := idx[mapID]
	if set == nil {
		return
	}
	delete(set, guid)
	if len(set) == 0 {
		delete(idx, mapID)
	}
}

// candidatesOnMap returns every other player+NPC GUID sharing e's map,
// using the cell grid when bounded or a flat scan when unbounded.
func (r *Registry) candidatesOnMap(e *entity.Entity) []entity.GUID {
	var out []entity.GUID
	if r.viewDistance > 0 {
		out = r.grid.GetNearby(e.MapID, e.X, e.Y)
		filtered := out[:0]
		for _, guid := range out {
			if guid != e.GUID {
				filtered = append(filtered, guid)
			}
		}
		return filtered
	}
	for guid := range r.byMapPlayers[e.MapID] {
		if guid != e.GUID {
			out = append(out, guid)
		}
	}
	for guid := range r.byMapNPCs[e.MapID] {
		out = append(out, guid)
	}
	return out
}

func (r *Registry) canSee(viewer, other *entity.Entity) bool {
	if r.viewDistance <= 0 {
		return true
	}
	_, wasVisible := r.visible[viewer.GUID][other.GUID]
	leaveRadius := r.viewDistance + 4
	enterRadius := r.viewDistance + 2
	dist := viewer.DistanceTo(other)
	if wasVisible {
		return dist <= leaveRadius
	}
	return dist <= enterRadius
}

// ---------- Players ----------

// SpawnResult is what SpawnPlayer computed: who to notify of the new
// arrival, and what the new arrival should be shown in turn. The two
// lists are produced together so the caller can emit both halves of the
// spawn/despawn pair atomically within the same tick.
type SpawnResult struct {
	NotifyOthers []entity.GUID
	VisibleToNew []*entity.Entity
}

// SpawnPlayer inserts p into the per-map player set and computes the
// spawn broadcast pair: existing players that should see p appear, and
// the entities already on the map that p should see.
func (r *Registry) SpawnPlayer(p *entity.Entity) SpawnResult {
	r.players[p.GUID] = p
	r.addToMapIndex(r.byMapPlayers, p.MapID, p.GUID)
	if r.viewDistance > 0 {
		r.grid.Add(p.GUID, p.MapID, p.X, p.Y)
	}
	r.visible[p.GUID] = make(map[entity.GUID]struct{})

	var res SpawnResult
	for _, guid := range r.candidatesOnMap(p) {
		other := r.entityByGUID(guid)
		if other == nil {
			continue
		}
		if !r.canSee(other, p) {
			continue
		}
		res.NotifyOthers = append(res.NotifyOthers, guid)
		if viewerSet, ok := r.visible[guid]; ok {
			viewerSet[p.GUID] = struct{}{}
		}
		if !r.canSee(p, other) {
			continue
		}
		res.VisibleToNew = append(res.VisibleToNew, other)
		r.visible[p.GUID][guid] = struct{}{}
	}
	return res
}

// DespawnPlayer removes p from every index and returns the other
// players that must receive a destroy message for its GUID.
func (r *Registry) DespawnPlayer(guid entity.GUID) []entity.GUID {
	p, ok := r.players[guid]
	if !ok {
		return nil
	}
	notify := r.visibleViewersOf(guid)

	delete(r.players, guid)
	r.removeFromMapIndex(r.byMapPlayers, p.MapID, guid)
	if r.viewDistance > 0 {
		r.grid.Remove(guid, p.MapID, p.X, p.Y)
	}
	delete(r.visible, guid)
	for _, viewer := range notify {
		delete(r.visible[viewer], guid)
	}
	return notify
}

// visibleViewersOf returns every player GUID that currently has guid
// marked visible.
func (r *Registry) visibleViewersOf(guid entity.GUID) []entity.GUID {
	var out []entity.GUID
	for viewer, set := range r.visible {
		if _, ok := set[guid]; ok {
			out = append(out, viewer)
		}
	}
	return out
}

func (r *Registry) entityByGUID(guid entity.GUID) *entity.Entity {
	if e, ok := r.players[guid]; ok {
		return e
	}
	if e, ok := r.npcs[guid]; ok {
		return e
	}
	return nil
}

// ChangePlayerMap teleports p to a new map/position via an atomic
// despawn-then-spawn pair.
func (r *Registry) ChangePlayerMap(p *entity.Entity, newMapID int, newX, newY float64) ([]entity.GUID, SpawnResult) {
	despawnNotify := r.DespawnPlayer(p.GUID)
	p.MapID, p.X, p.Y = newMapID, newX, newY
	return despawnNotify, r.SpawnPlayer(p)
}

// VisibilityDelta is what UpdateVisibility/OnPlayerMoved computed for
// one viewer this tick.
type VisibilityDelta struct {
	Appeared    []*entity.Entity
	Disappeared []entity.GUID
}

// UpdateVisibility recomputes viewer's visible set from scratch against
// every candidate on its map. With viewDistance == 0 this is a no-op
// beyond catching newly-added entities, since everyone on the map is
// always visible.
func (r *Registry) UpdateVisibility(viewer *entity.Entity) VisibilityDelta {
	return r.recomputeVisibility(viewer)
}

// OnPlayerMoved recomputes visibility after a position change. oldX/oldY
// are accepted for symmetry with the source's callback shape but the
// recomputation itself is position-current, since hysteresis state
// already lives in r.visible.
func (r *Registry) OnPlayerMoved(viewer *entity.Entity, oldX, oldY float64) VisibilityDelta {
	if r.viewDistance > 0 {
		r.grid.Move(viewer.GUID, viewer.MapID, oldX, oldY, viewer.X, viewer.Y)
	}
	return r.recomputeVisibility(viewer)
}

func (r *Registry) recomputeVisibility(viewer *entity.Entity) VisibilityDelta {
	var delta VisibilityDelta
	known := r.visible[viewer.GUID]
	if known == nil {
		known = make(map[entity.GUID]struct{})
		r.visible[viewer.GUID] = known
	}

	stillVisible := make(map[entity.GUID]struct{}, len(known))
	for _, guid := range r.candidatesOnMap(viewer) {
		other := r.entityByGUID(guid)
		if other == nil {
			continue
		}
		if !r.canSee(viewer, other) {
			continue
		}
		stillVisible[guid] = struct{}{}
		if _, already := known[guid]; !already {
			delta.Appeared = append(delta.Appeared, other)
		}
	}
	for guid := range known {
		if _, stillHere := stillVisible[guid]; !stillHere {
			delta.Disappeared = append(delta.Disappeared, guid)
		}
	}
	r.visible[viewer.GUID] = stillVisible
	return delta
}

func (r *Registry) PlayerCount() int { return len(r.players) }

func (r *Registry) GetPlayer(guid entity.GUID) *entity.Entity { return r.players[guid] }

// ---------- NPCs ----------

// SpawnNPC registers an NPC in the world.
func (r *Registry) SpawnNPC(n *entity.Entity) {
	r.npcs[n.GUID] = n
	r.addToMapIndex(r.byMapNPCs, n.MapID, n.GUID)
	if r.viewDistance > 0 {
		r.grid.Add(n.GUID, n.MapID, n.X, n.Y)
	}
}

// DespawnNPC marks an NPC as no longer occupying space (a corpse still
// present in GetNPC/NPCsOnMap until RemoveNPC), returning viewers to
// notify of its destroy.
func (r *Registry) DespawnNPC(guid entity.GUID) []entity.GUID {
	n, ok := r.npcs[guid]
	if !ok {
		return nil
	}
	notify := r.visibleViewersOf(guid)
	if r.viewDistance > 0 {
		r.grid.Remove(guid, n.MapID, n.X, n.Y)
	}
	for _, viewer := range notify {
		delete(r.visible[viewer], guid)
	}
	return notify
}

// RemoveNPC permanently deletes an NPC from the registry.
func (r *Registry) RemoveNPC(guid entity.GUID) {
	n, ok := r.npcs[guid]
	if !ok {
		return
	}
	delete(r.npcs, guid)
	r.removeFromMapIndex(r.byMapNPCs, n.MapID, guid)
}

func (r *Registry) GetNPC(guid entity.GUID) *entity.Entity { return r.npcs[guid] }

// NPCsOnMap returns every NPC registered on mapID.
func (r *Registry) NPCsOnMap(mapID int) []*entity.Entity {
	var out []*entity.Entity
	for guid := range r.byMapNPCs[mapID] {
		if n, ok := r.npcs[guid]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ---------- Broadcast target lists ----------

// BroadcastToMap returns every player GUID on mapID except exclude (the
// zero GUID excludes none). The caller turns this into an actual send.
func (r *Registry) BroadcastToMap(mapID int, exclude entity.GUID) []entity.GUID {
	var out []entity.GUID
	for guid := range r.byMapPlayers[mapID] {
		if guid != exclude {
			out = append(out, guid)
		}
	}
	return out
}

// BroadcastToVisible returns every player GUID currently able to see
// subject, except exclude.
func (r *Registry) BroadcastToVisible(subject entity.GUID, exclude entity.GUID) []entity.GUID {
	var out []entity.GUID
	for _, guid := range r.visibleViewersOf(subject) {
		if guid != exclude {
			out = append(out, guid)
		}
	}
	return out
}

// BroadcastGlobal returns every player GUID in the registry except
// exclude.
func (r *Registry) BroadcastGlobal(exclude entity.GUID) []entity.GUID {
	out := make([]entity.GUID, 0, len(r.players))
	for guid := range r.players {
		if guid != exclude {
			out = append(out, guid)
		}
	}
	return out
}
