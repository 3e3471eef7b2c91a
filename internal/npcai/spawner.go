package npcai

import "github.com/dreadmyst/server/internal/entity"

// SpawnRow is one row of a map's spawn list: a template instance placed
// at a position, optionally tied to a linked respawn group and a
// waypoint sequence.
type SpawnRow struct {
	SpawnID       int
	TemplateID    int
	MapID         int
	X, Y          float64
	LinkedGroupID int
	LinkedRespawn bool
	RespawnSeconds float64
	Waypoints     []Waypoint
	ArrivalTolerance float64
}

// Factory instantiates a live NPC entity + controller for a spawn row.
// It is supplied by the caller (content cache + entity registry) so
// this package does not depend on either.
type Factory func(row SpawnRow) (*entity.Entity, *Controller)

// Spawner owns every live instance plus pending respawn timers for one
// map, over the spawn rows passed to NewSpawner.
type Spawner struct {
	mapID int
	rows  []SpawnRow
	make  Factory

	live    map[int]*Controller // spawn id -> live controller
	timers  map[int]float64     // spawn id -> seconds remaining until respawn
	byGroup map[int][]int       // linked group id -> spawn ids
}

func NewSpawner(mapID int, rows []SpawnRow, factory Factory) *Spawner {
	s := &Spawner{
		mapID:   mapID,
		rows:    rows,
		make:    factory,
		live:    make(map[int]*Controller),
		timers:  make(map[int]float64),
		byGroup: make(map[int][]int),
	}
	for _, r := range rows {
		if r.LinkedGroupID != 0 {
			s.byGroup[r.LinkedGroupID] = append(s.byGroup[r.LinkedGroupID], r.SpawnID)
		}
	}
	return s
}

// SpawnAll instantiates every row that is neither live nor waiting on a
// respawn timer. cmd/server calls it once per map at start-up.
func (s *Spawner) SpawnAll() []*Controller {
	var spawned []*Controller
	for _, row := range s.rows {
		if _, ok := s.live[row.SpawnID]; ok {
			continue
		}
		if _, waiting := s.timers[row.SpawnID]; waiting {
			continue
		}
		spawned = append(spawned, s.spawnOne(row))
	}
	return spawned
}

func (s *Spawner) spawnOne(row SpawnRow) *Controller {
	_, ctrl := s.make(row)
	if len(row.Waypoints) > 0 {
		ctrl.Waypoints = NewWaypointRoute(row.Waypoints, row.ArrivalTolerance)
		ctrl.Template.MovementType = MovementWaypoint
	}
	s.live[row.SpawnID] = ctrl
	return ctrl
}

// NotifyDeath records a respawn timer for spawnID's own row, plus every
// linked-group member flagged linked-respawn.
func (s *Spawner) NotifyDeath(spawnID int) {
	row, ok := s.rowByID(spawnID)
	if !ok {
		return
	}
	delete(s.live, spawnID)
	s.timers[spawnID] = row.RespawnSeconds

	if row.LinkedGroupID == 0 {
		return
	}
	for _, memberID := range s.byGroup[row.LinkedGroupID] {
		if memberID == spawnID {
			continue
		}
		memberRow, ok := s.rowByID(memberID)
		if !ok || !memberRow.LinkedRespawn {
			continue
		}
		if _, alreadyLive := s.live[memberID]; alreadyLive {
			continue
		}
		s.timers[memberID] = memberRow.RespawnSeconds
	}
}

func (s *Spawner) rowByID(spawnID int) (SpawnRow, bool) {
	for _, r := range s.rows {
		if r.SpawnID == spawnID {
			return r, true
		}
	}
	return SpawnRow{}, false
}

// Tick decrements every pending respawn timer and instantiates any that
// reach zero, returning the freshly (re)spawned controllers.
func (s *Spawner) Tick(dt float64) []*Controller {
	var respawned []*Controller
	for spawnID, remaining := range s.timers {
		remaining -= dt
		if remaining > 0 {
			s.timers[spawnID] = remaining
			continue
		}
		delete(s.timers, spawnID)
		row, ok := s.rowByID(spawnID)
		if !ok {
			continue
		}
		respawned = append(respawned, s.spawnOne(row))
	}
	return respawned
}

// Live returns every currently live controller on this map.
func (s *Spawner) Live() []*Controller {
	out := make([]*Controller, 0, len(s.live))
	for _, c := range s.live {
		out = append(out, c)
	}
	return out
}
