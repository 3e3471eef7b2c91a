// Package content loads the read-only template tables — items, spells,
// NPCs, quests, class/level stats, loot tables, gossip, vendor stock,
// waypoints, spawn rows, linked groups, and map metadata — once at
// start-up into immutable in-memory maps keyed by entry id.
package content

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache owns every template pointer returned to the rest of the server.
// It is populated once by Open and never mutated afterward, so it needs
// no internal locking.
type Cache struct {
	Items    map[int]*Item
	Spells   map[int]*Spell
	NPCs     map[int]*NPCTemplate
	Quests   map[int]*Quest

	ClassLevelStats map[classLevelKey]*LevelStats
	ExperienceTable map[int]int64 // level -> experience required

	LootTables map[int][]LootEntry     // npc template id -> entries
	Gossip     map[int]*GossipMenu     // npc template id -> menu
	VendorStock map[int][]VendorItem   // npc template id -> stock

	Waypoints  map[int][]WaypointPoint // sequence id -> ordered points
	SpawnRows  map[int][]SpawnRow      // map id -> spawn rows
	LinkedGroups map[int][]int         // group id -> spawn ids

	Maps map[int]*MapMeta
}

type classLevelKey struct {
	ClassID int
	Level   int
}

// Open opens the content store at path read-only and loads every table
// into the cache. A failure here is a fatal start-up error.
func Open(path string) (*Cache, error) {
	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open content store %s: %w", path, err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping content store %s: %w", path, err)
	}

	c := &Cache{
		Items:           make(map[int]*Item),
		Spells:          make(map[int]*Spell),
		NPCs:            make(map[int]*NPCTemplate),
		Quests:          make(map[int]*Quest),
		ClassLevelStats: make(map[classLevelKey]*LevelStats),
		ExperienceTable: make(map[int]int64),
		LootTables:      make(map[int][]LootEntry),
		Gossip:          make(map[int]*GossipMenu),
		VendorStock:     make(map[int][]VendorItem),
		Waypoints:       make(map[int][]WaypointPoint),
		SpawnRows:       make(map[int][]SpawnRow),
		LinkedGroups:    make(map[int][]int),
		Maps:            make(map[int]*MapMeta),
	}

	loaders := []func(*sql.DB, *Cache) error{
		loadItems, loadSpells, loadNPCs, loadQuests,
		loadClassLevelStats, loadExperienceTable,
		loadLootTables, loadGossip, loadVendorStock,
		loadWaypoints, loadSpawnRows, loadMaps,
	}
	for _, fn := range loaders {
		if err := fn(conn, c); err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
	}
	return c, nil
}

func (c *Cache) LevelStats(classID, level int) *LevelStats {
	return c.ClassLevelStats[classLevelKey{ClassID: classID, Level: level}]
}

// SetLevelStats installs the stat table for one class/level pair. Used
// by loadClassLevelStats and by tests that build a Cache by hand rather
// than through Open.
func (c *Cache) SetLevelStats(classID, level int, ls *LevelStats) {
	if c.ClassLevelStats == nil {
		c.ClassLevelStats = make(map[classLevelKey]*LevelStats)
	}
	c.ClassLevelStats[classLevelKey{ClassID: classID, Level: level}] = ls
}
