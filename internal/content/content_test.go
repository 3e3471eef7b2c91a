package content

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE items (id INTEGER, name TEXT, max_stack INTEGER, slot_type INTEGER, equip_classes INTEGER, min_level INTEGER);
CREATE TABLE spells (id INTEGER, name TEXT, mana_cost INTEGER, cast_time_ms INTEGER, gcd_ms INTEGER,
  cooldown_s INTEGER, cooldown_category INTEGER, range REAL, ignores_los INTEGER, interruptible_by_damage INTEGER,
  no_cancel_on_move INTEGER, allows_dead_target INTEGER, target_type INTEGER, impossible_dodge INTEGER,
  impossible_crit INTEGER, same_stack_for_all_casters INTEGER);
CREATE TABLE spell_effects (spell_id INTEGER, slot INTEGER, effect_target_type INTEGER, formula_expr TEXT,
  duration_s INTEGER, tick_period_s INTEGER, aura_variant INTEGER);
CREATE TABLE npc_templates (id INTEGER, name TEXT, level INTEGER, base_health INTEGER, base_mana INTEGER,
  base_xp INTEGER, aggro_radius REAL, leash_radius REAL, attack_cooldown_ms INTEGER, passive INTEGER,
  movement_type INTEGER, wander_radius REAL);
CREATE TABLE quests (id INTEGER, title TEXT, min_level INTEGER, repeatable INTEGER, prereq_quest_id INTEGER,
  start_npc_id INTEGER, finish_npc_id INTEGER, reward_xp INTEGER, reward_gold INTEGER, reward_item_id INTEGER);
CREATE TABLE quest_objectives (quest_id INTEGER, slot INTEGER, description TEXT, required INTEGER, kind INTEGER, target_id INTEGER);
CREATE TABLE class_level_stats (class_id INTEGER, level INTEGER, max_health INTEGER, max_mana INTEGER,
  s0 INTEGER, s1 INTEGER, s2 INTEGER, s3 INTEGER, s4 INTEGER, s5 INTEGER, s6 INTEGER, s7 INTEGER);
CREATE TABLE experience_table (level INTEGER, experience_required INTEGER);
CREATE TABLE loot_table (npc_id INTEGER, item_id INTEGER, weight REAL, min_qty INTEGER, max_qty INTEGER);
CREATE TABLE gossip_menus (npc_id INTEGER, text_id INTEGER);
CREATE TABLE gossip_options (npc_id INTEGER, slot INTEGER, option_text TEXT);
CREATE TABLE vendor_stock (npc_id INTEGER, item_id INTEGER, price INTEGER);
CREATE TABLE waypoints (sequence_id INTEGER, ord INTEGER, x REAL, y REAL, dwell_s INTEGER);
CREATE TABLE npc_spawns (map_id INTEGER, spawn_id INTEGER, template_id INTEGER, x REAL, y REAL,
  respawn_s INTEGER, linked_group_id INTEGER, waypoint_seq_id INTEGER);
CREATE TABLE maps (id INTEGER, name TEXT, base_cell_width REAL, base_cell_height REAL, preload INTEGER);
`

func buildTestStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	stmts := []string{
		`INSERT INTO items VALUES (1001, 'Short Sword', 1, 0, 1, 1)`,
		`INSERT INTO spells VALUES (10, 'Fireball', 20, 1500, 1000, 3, 0, 30.0, 0, 1, 0, 0, 2, 0, 0, 0)`,
		`INSERT INTO spell_effects VALUES (10, 0, 4, '20 + intellect * 0.5', 0, 0, 0)`,
		`INSERT INTO npc_templates VALUES (50, 'Goblin', 3, 80, 0, 25, 8.0, 20.0, 1500, 0, 1, 10.0)`,
		`INSERT INTO quests VALUES (42, 'Goblin Trouble', 1, 0, 0, 50, 50, 100, 50, 0)`,
		`INSERT INTO quest_objectives VALUES (42, 0, 'Kill 3 goblins', 3, 1, 50)`,
		`INSERT INTO class_level_stats VALUES (1, 1, 100, 50, 10, 10, 10, 10, 10, 10, 10, 10)`,
		`INSERT INTO experience_table VALUES (2, 110)`,
		`INSERT INTO loot_table VALUES (50, 1001, 0.5, 1, 1)`,
		`INSERT INTO gossip_menus VALUES (50, 900)`,
		`INSERT INTO gossip_options VALUES (50, 0, 'Trade')`,
		`INSERT INTO vendor_stock VALUES (50, 1001, 25)`,
		`INSERT INTO waypoints VALUES (1, 0, 5.0, 5.0, 2)`,
		`INSERT INTO npc_spawns VALUES (1, 200, 50, 12.0, 12.0, 30, 7, 1)`,
		`INSERT INTO maps VALUES (1, 'Starter Fields', 32.0, 32.0, 1)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("insert: %v: %v", s, err)
		}
	}
	return path
}

func TestOpenLoadsEveryTable(t *testing.T) {
	path := buildTestStore(t)
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if c.Items[1001] == nil || c.Items[1001].Name != "Short Sword" {
		t.Fatalf("item not loaded: %+v", c.Items[1001])
	}
	sp := c.Spells[10]
	if sp == nil || len(sp.Effects) != 1 {
		t.Fatalf("spell/effects not loaded: %+v", sp)
	}
	if c.NPCs[50] == nil || c.NPCs[50].Name != "Goblin" {
		t.Fatalf("npc not loaded: %+v", c.NPCs[50])
	}
	q := c.Quests[42]
	if q == nil || q.Objectives[0].Required != 3 {
		t.Fatalf("quest not loaded: %+v", q)
	}
	if ls := c.LevelStats(1, 1); ls == nil || ls.MaxHealth != 100 {
		t.Fatalf("level stats not loaded: %+v", ls)
	}
	if c.ExperienceTable[2] != 110 {
		t.Fatalf("experience table not loaded: %+v", c.ExperienceTable)
	}
	if len(c.LootTables[50]) != 1 {
		t.Fatalf("loot table not loaded: %+v", c.LootTables[50])
	}
	if c.Gossip[50] == nil || len(c.Gossip[50].Options) != 1 {
		t.Fatalf("gossip not loaded: %+v", c.Gossip[50])
	}
	if len(c.VendorStock[50]) != 1 {
		t.Fatalf("vendor stock not loaded: %+v", c.VendorStock[50])
	}
	if len(c.Waypoints[1]) != 1 {
		t.Fatalf("waypoints not loaded: %+v", c.Waypoints[1])
	}
	if len(c.SpawnRows[1]) != 1 {
		t.Fatalf("spawn rows not loaded: %+v", c.SpawnRows[1])
	}
	if len(c.LinkedGroups[7]) != 1 {
		t.Fatalf("linked groups not derived: %+v", c.LinkedGroups[7])
	}
	if c.Maps[1] == nil || c.Maps[1].Name != "Starter Fields" {
		t.Fatalf("map metadata not loaded: %+v", c.Maps[1])
	}
}

func TestOpenMissingFileFails(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatal("expected error opening a missing content store")
	}
}
