package content

import "database/sql"

type Item struct {
	ID           int
	Name         string
	MaxStack     int
	SlotType     int
	EquipClasses int64 // bitmask of allowed classes
	MinLevel     int
}

type Spell struct {
	ID                  int
	Name                string
	ManaCost            int
	CastTimeMillis      int
	GCDMillis           int
	CooldownSeconds     int
	CooldownCategory    int
	Range               float64
	IgnoresLineOfSight  bool
	InterruptibleByDamage bool
	NoCancelOnMove      bool
	AllowsDeadTarget    bool
	TargetType          int // self, friendly, hostile, ground, item
	Effects             []SpellEffect
	Attributes          SpellAttributes
}

type SpellAttributes struct {
	ImpossibleDodge bool
	ImpossibleCrit  bool
	SameStackForAllCasters bool
}

type SpellEffect struct {
	EffectTargetType int // point, area-hostile, area-friendly, self, single
	FormulaExpr      string
	DurationSeconds  int
	TickPeriodSeconds int
	AuraVariant      int
}

type NPCTemplate struct {
	ID           int
	Name         string
	Level        int
	BaseHealth   int
	BaseMana     int
	BaseXP       int64
	AggroRadius  float64
	LeashRadius  float64
	AttackCooldownMillis int
	Passive      bool
	MovementType int // stand, wander, waypoint
	WanderRadius float64
}

type Quest struct {
	ID               int
	Title            string
	MinLevel         int
	Repeatable       bool
	PrereqQuestID    int
	StartNpcID       int
	FinishNpcID      int
	Objectives       [4]QuestObjective
	RewardXP         int64
	RewardGold       int64
	RewardItemID     int
}

// ObjectiveKind distinguishes how a quest objective's progress advances.
type ObjectiveKind int

const (
	ObjectiveKindNone ObjectiveKind = iota
	ObjectiveKindKill
	ObjectiveKindItemCount
	ObjectiveKindSpellCast
)

type QuestObjective struct {
	Description string
	Required    int
	Kind        ObjectiveKind
	TargetID    int // npc template id, item id, or spell id, per Kind
}

type LevelStats struct {
	MaxHealth int
	MaxMana   int
	Stats     [8]int
}

type LootEntry struct {
	ItemID int
	Weight float64
	MinQty int
	MaxQty int
}

type GossipMenu struct {
	TextID  int
	Options []string
}

type VendorItem struct {
	ItemID int
	Price  int64
}

type WaypointPoint struct {
	X, Y       float64
	DwellSeconds int
}

type SpawnRow struct {
	SpawnID       int
	TemplateID    int
	X, Y          float64
	RespawnSeconds int
	LinkedGroupID int
	WaypointSeqID int
}

type MapMeta struct {
	MapID          int
	Name           string
	BaseCellWidth  float64
	BaseCellHeight float64
	Preload        bool
}

func loadItems(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT id, name, max_stack, slot_type, equip_classes, min_level FROM items`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		it := &Item{}
		if err := rows.Scan(&it.ID, &it.Name, &it.MaxStack, &it.SlotType, &it.EquipClasses, &it.MinLevel); err != nil {
			return err
		}
		c.Items[it.ID] = it
	}
	return rows.Err()
}

func loadSpells(db *sql.DB, c *Cache) error {
	rows, err := db.Query(
		`SELECT id, name, mana_cost, cast_time_ms, gcd_ms, cooldown_s, cooldown_category,
		        range, ignores_los, interruptible_by_damage, no_cancel_on_move,
		        allows_dead_target, target_type, impossible_dodge, impossible_crit,
		        same_stack_for_all_casters
		 FROM spells`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		sp := &Spell{}
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.ManaCost, &sp.CastTimeMillis, &sp.GCDMillis,
			&sp.CooldownSeconds, &sp.CooldownCategory, &sp.Range, &sp.IgnoresLineOfSight,
			&sp.InterruptibleByDamage, &sp.NoCancelOnMove, &sp.AllowsDeadTarget, &sp.TargetType,
			&sp.Attributes.ImpossibleDodge, &sp.Attributes.ImpossibleCrit,
			&sp.Attributes.SameStackForAllCasters); err != nil {
			return err
		}
		if err := loadSpellEffects(db, sp); err != nil {
			return err
		}
		c.Spells[sp.ID] = sp
	}
	return rows.Err()
}

func loadSpellEffects(db *sql.DB, sp *Spell) error {
	rows, err := db.Query(
		`SELECT effect_target_type, formula_expr, duration_s, tick_period_s, aura_variant
		 FROM spell_effects WHERE spell_id = ? ORDER BY slot`, sp.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e SpellEffect
		if err := rows.Scan(&e.EffectTargetType, &e.FormulaExpr, &e.DurationSeconds,
			&e.TickPeriodSeconds, &e.AuraVariant); err != nil {
			return err
		}
		sp.Effects = append(sp.Effects, e)
	}
	return rows.Err()
}

func loadNPCs(db *sql.DB, c *Cache) error {
	rows, err := db.Query(
		`SELECT id, name, level, base_health, base_mana, base_xp, aggro_radius, leash_radius,
		        attack_cooldown_ms, passive, movement_type, wander_radius FROM npc_templates`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		n := &NPCTemplate{}
		if err := rows.Scan(&n.ID, &n.Name, &n.Level, &n.BaseHealth, &n.BaseMana, &n.BaseXP,
			&n.AggroRadius, &n.LeashRadius, &n.AttackCooldownMillis, &n.Passive,
			&n.MovementType, &n.WanderRadius); err != nil {
			return err
		}
		c.NPCs[n.ID] = n
	}
	return rows.Err()
}

func loadQuests(db *sql.DB, c *Cache) error {
	rows, err := db.Query(
		`SELECT id, title, min_level, repeatable, prereq_quest_id, start_npc_id, finish_npc_id,
		        reward_xp, reward_gold, reward_item_id
		 FROM quests`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		q := &Quest{}
		if err := rows.Scan(&q.ID, &q.Title, &q.MinLevel, &q.Repeatable, &q.PrereqQuestID,
			&q.StartNpcID, &q.FinishNpcID, &q.RewardXP, &q.RewardGold, &q.RewardItemID); err != nil {
			return err
		}
		if err := loadQuestObjectives(db, q); err != nil {
			return err
		}
		c.Quests[q.ID] = q
	}
	return rows.Err()
}

func loadQuestObjectives(db *sql.DB, q *Quest) error {
	rows, err := db.Query(
		`SELECT slot, description, required, kind, target_id FROM quest_objectives WHERE quest_id = ? ORDER BY slot`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var slot int
		var obj QuestObjective
		var kind int
		if err := rows.Scan(&slot, &obj.Description, &obj.Required, &kind, &obj.TargetID); err != nil {
			return err
		}
		obj.Kind = ObjectiveKind(kind)
		if slot >= 0 && slot < 4 {
			q.Objectives[slot] = obj
		}
	}
	return rows.Err()
}

func loadClassLevelStats(db *sql.DB, c *Cache) error {
	rows, err := db.Query(
		`SELECT class_id, level, max_health, max_mana, s0, s1, s2, s3, s4, s5, s6, s7
		 FROM class_level_stats`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key classLevelKey
		ls := &LevelStats{}
		if err := rows.Scan(&key.ClassID, &key.Level, &ls.MaxHealth, &ls.MaxMana,
			&ls.Stats[0], &ls.Stats[1], &ls.Stats[2], &ls.Stats[3],
			&ls.Stats[4], &ls.Stats[5], &ls.Stats[6], &ls.Stats[7]); err != nil {
			return err
		}
		c.ClassLevelStats[key] = ls
	}
	return rows.Err()
}

func loadExperienceTable(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT level, experience_required FROM experience_table`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var level int
		var xp int64
		if err := rows.Scan(&level, &xp); err != nil {
			return err
		}
		c.ExperienceTable[level] = xp
	}
	return rows.Err()
}

func loadLootTables(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT npc_id, item_id, weight, min_qty, max_qty FROM loot_table`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var npcID int
		var e LootEntry
		if err := rows.Scan(&npcID, &e.ItemID, &e.Weight, &e.MinQty, &e.MaxQty); err != nil {
			return err
		}
		c.LootTables[npcID] = append(c.LootTables[npcID], e)
	}
	return rows.Err()
}

func loadGossip(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT npc_id, text_id FROM gossip_menus`)
	if err != nil {
		return err
	}
	defer rows.Close()
	menus := make(map[int]*GossipMenu)
	for rows.Next() {
		var npcID, textID int
		if err := rows.Scan(&npcID, &textID); err != nil {
			return err
		}
		menus[npcID] = &GossipMenu{TextID: textID}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	optRows, err := db.Query(`SELECT npc_id, option_text FROM gossip_options ORDER BY npc_id, slot`)
	if err != nil {
		return err
	}
	defer optRows.Close()
	for optRows.Next() {
		var npcID int
		var text string
		if err := optRows.Scan(&npcID, &text); err != nil {
			return err
		}
		if m, ok := menus[npcID]; ok {
			m.Options = append(m.Options, text)
		}
	}
	c.Gossip = menus
	return optRows.Err()
}

func loadVendorStock(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT npc_id, item_id, price FROM vendor_stock`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var npcID int
		var v VendorItem
		if err := rows.Scan(&npcID, &v.ItemID, &v.Price); err != nil {
			return err
		}
		c.VendorStock[npcID] = append(c.VendorStock[npcID], v)
	}
	return rows.Err()
}

func loadWaypoints(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT sequence_id, x, y, dwell_s FROM waypoints ORDER BY sequence_id, ord`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var seqID int
		var p WaypointPoint
		if err := rows.Scan(&seqID, &p.X, &p.Y, &p.DwellSeconds); err != nil {
			return err
		}
		c.Waypoints[seqID] = append(c.Waypoints[seqID], p)
	}
	return rows.Err()
}

func loadSpawnRows(db *sql.DB, c *Cache) error {
	rows, err := db.Query(
		`SELECT map_id, spawn_id, template_id, x, y, respawn_s, linked_group_id, waypoint_seq_id
		 FROM npc_spawns`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var mapID int
		var s SpawnRow
		if err := rows.Scan(&mapID, &s.SpawnID, &s.TemplateID, &s.X, &s.Y,
			&s.RespawnSeconds, &s.LinkedGroupID, &s.WaypointSeqID); err != nil {
			return err
		}
		c.SpawnRows[mapID] = append(c.SpawnRows[mapID], s)
		if s.LinkedGroupID != 0 {
			c.LinkedGroups[s.LinkedGroupID] = append(c.LinkedGroups[s.LinkedGroupID], s.SpawnID)
		}
	}
	return rows.Err()
}

func loadMaps(db *sql.DB, c *Cache) error {
	rows, err := db.Query(`SELECT id, name, base_cell_width, base_cell_height, preload FROM maps`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		m := &MapMeta{}
		if err := rows.Scan(&m.MapID, &m.Name, &m.BaseCellWidth, &m.BaseCellHeight, &m.Preload); err != nil {
			return err
		}
		c.Maps[m.MapID] = m
	}
	return rows.Err()
}
