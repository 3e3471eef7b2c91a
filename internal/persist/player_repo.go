package persist

import (
	"database/sql"
	"errors"
	"fmt"
)

// ItemSlot is one inventory, bank, or equipment slot record.
type ItemSlot struct {
	Slot       int
	ItemID     int
	Count      int
	Durability int
	Affixes    string
	GemSlots   string
}

// QuestEntry is one quest-log row.
type QuestEntry struct {
	QuestID  int
	Status   int // 0=not-started 1=in-progress 2=complete 3=rewarded
	Progress [4]int
}

// CharacterRow is the top-level character record plus every sub-store
// that must commit atomically with it.
type CharacterRow struct {
	CharID            int
	Account           string
	Name              string
	ClassID           int
	Level             int
	Experience        int64
	MapID             int
	X, Y              float64
	Health, Mana      int
	Gold              int64
	AdminInvulnerable bool

	Inventory  []ItemSlot
	Bank       []ItemSlot
	Equipment  []ItemSlot
	QuestLog   []QuestEntry
	StatBonus  [8]int
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// Load reads a full character record by name, including every sub-store.
// Returns nil, nil if no character with that name exists.
func (r *CharacterRepo) Load(name string) (*CharacterRow, error) {
	return r.load(`name = ?`, name)
}

// LoadByID reads a full character record by char id, including every
// sub-store. Returns nil, nil if no such character exists.
func (r *CharacterRepo) LoadByID(charID int) (*CharacterRow, error) {
	return r.load(`char_id = ?`, charID)
}

func (r *CharacterRepo) load(where string, arg any) (*CharacterRow, error) {
	c := &CharacterRow{}
	var invuln int
	err := r.db.QueryRow(
		`SELECT char_id, account, name, class_id, level, experience, map_id, x, y,
		        health, mana, gold, admin_invulnerable
		 FROM characters WHERE `+where+` AND deleted_at IS NULL`, arg,
	).Scan(&c.CharID, &c.Account, &c.Name, &c.ClassID, &c.Level, &c.Experience,
		&c.MapID, &c.X, &c.Y, &c.Health, &c.Mana, &c.Gold, &invuln)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load character (%s=%v): %w", where, arg, err)
	}
	c.AdminInvulnerable = invuln != 0

	if c.Inventory, err = r.loadSlots("inventory_slots", c.CharID); err != nil {
		return nil, err
	}
	if c.Bank, err = r.loadSlots("bank_slots", c.CharID); err != nil {
		return nil, err
	}
	if c.Equipment, err = r.loadEquipment(c.CharID); err != nil {
		return nil, err
	}
	if c.QuestLog, err = r.loadQuestLog(c.CharID); err != nil {
		return nil, err
	}
	if c.StatBonus, err = r.loadStatBonuses(c.CharID); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CharacterRepo) loadSlots(table string, charID int) ([]ItemSlot, error) {
	rows, err := r.db.Query(fmt.Sprintf(
		`SELECT slot, item_id, count, durability, affixes, gem_slots FROM %s WHERE char_id = ?`, table,
	), charID)
	if err != nil {
		return nil, fmt.Errorf("load %s for char %d: %w", table, charID, err)
	}
	defer rows.Close()

	var out []ItemSlot
	for rows.Next() {
		var s ItemSlot
		if err := rows.Scan(&s.Slot, &s.ItemID, &s.Count, &s.Durability, &s.Affixes, &s.GemSlots); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CharacterRepo) loadEquipment(charID int) ([]ItemSlot, error) {
	rows, err := r.db.Query(
		`SELECT slot_type, item_id, count, durability, affixes, gem_slots FROM equipment_slots WHERE char_id = ?`, charID)
	if err != nil {
		return nil, fmt.Errorf("load equipment for char %d: %w", charID, err)
	}
	defer rows.Close()

	var out []ItemSlot
	for rows.Next() {
		var s ItemSlot
		if err := rows.Scan(&s.Slot, &s.ItemID, &s.Count, &s.Durability, &s.Affixes, &s.GemSlots); err != nil {
			return nil, fmt.Errorf("scan equipment row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CharacterRepo) loadQuestLog(charID int) ([]QuestEntry, error) {
	rows, err := r.db.Query(
		`SELECT quest_id, status, progress_0, progress_1, progress_2, progress_3
		 FROM quest_log WHERE char_id = ?`, charID)
	if err != nil {
		return nil, fmt.Errorf("load quest log for char %d: %w", charID, err)
	}
	defer rows.Close()

	var out []QuestEntry
	for rows.Next() {
		var q QuestEntry
		if err := rows.Scan(&q.QuestID, &q.Status, &q.Progress[0], &q.Progress[1], &q.Progress[2], &q.Progress[3]); err != nil {
			return nil, fmt.Errorf("scan quest log row: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *CharacterRepo) loadStatBonuses(charID int) ([8]int, error) {
	var bonuses [8]int
	rows, err := r.db.Query(`SELECT stat_idx, bonus FROM stat_bonuses WHERE char_id = ?`, charID)
	if err != nil {
		return bonuses, fmt.Errorf("load stat bonuses for char %d: %w", charID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx, bonus int
		if err := rows.Scan(&idx, &bonus); err != nil {
			return bonuses, fmt.Errorf("scan stat bonus row: %w", err)
		}
		if idx >= 0 && idx < 8 {
			bonuses[idx] = bonus
		}
	}
	return bonuses, rows.Err()
}

// Save writes c and every sub-store in a single transaction: the
// character row only commits if every sub-store write succeeds. On any
// failure the transaction rolls back and the caller is expected to leave
// its dirty bit set for retry.
func (r *CharacterRepo) Save(c *CharacterRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	invuln := 0
	if c.AdminInvulnerable {
		invuln = 1
	}
	if _, err := tx.Exec(
		`UPDATE characters SET level=?, experience=?, map_id=?, x=?, y=?, health=?, mana=?, gold=?, admin_invulnerable=?
		 WHERE char_id=?`,
		c.Level, c.Experience, c.MapID, c.X, c.Y, c.Health, c.Mana, c.Gold, invuln, c.CharID,
	); err != nil {
		return fmt.Errorf("save character %d: %w", c.CharID, err)
	}

	if err := saveSlots(tx, "inventory_slots", "slot", c.CharID, c.Inventory); err != nil {
		return err
	}
	if err := saveSlots(tx, "bank_slots", "slot", c.CharID, c.Bank); err != nil {
		return err
	}
	if err := saveSlots(tx, "equipment_slots", "slot_type", c.CharID, c.Equipment); err != nil {
		return err
	}
	if err := saveQuestLog(tx, c.CharID, c.QuestLog); err != nil {
		return err
	}
	if err := saveStatBonuses(tx, c.CharID, c.StatBonus); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit character %d save: %w", c.CharID, err)
	}
	committed = true
	return nil
}

func saveSlots(tx *Tx, table, slotColumn string, charID int, slots []ItemSlot) error {
	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE char_id = ?`, table), charID); err != nil {
		return fmt.Errorf("clear %s for char %d: %w", table, charID, err)
	}
	for _, s := range slots {
		if _, err := tx.Exec(fmt.Sprintf(
			`INSERT INTO %s (char_id, %s, item_id, count, durability, affixes, gem_slots)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`, table, slotColumn),
			charID, s.Slot, s.ItemID, s.Count, s.Durability, s.Affixes, s.GemSlots,
		); err != nil {
			return fmt.Errorf("insert %s slot %d for char %d: %w", table, s.Slot, charID, err)
		}
	}
	return nil
}

func saveQuestLog(tx *Tx, charID int, entries []QuestEntry) error {
	if _, err := tx.Exec(`DELETE FROM quest_log WHERE char_id = ?`, charID); err != nil {
		return fmt.Errorf("clear quest log for char %d: %w", charID, err)
	}
	for _, q := range entries {
		if _, err := tx.Exec(
			`INSERT INTO quest_log (char_id, quest_id, status, progress_0, progress_1, progress_2, progress_3)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			charID, q.QuestID, q.Status, q.Progress[0], q.Progress[1], q.Progress[2], q.Progress[3],
		); err != nil {
			return fmt.Errorf("insert quest %d for char %d: %w", q.QuestID, charID, err)
		}
	}
	return nil
}

func saveStatBonuses(tx *Tx, charID int, bonuses [8]int) error {
	if _, err := tx.Exec(`DELETE FROM stat_bonuses WHERE char_id = ?`, charID); err != nil {
		return fmt.Errorf("clear stat bonuses for char %d: %w", charID, err)
	}
	for idx, bonus := range bonuses {
		if bonus == 0 {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO stat_bonuses (char_id, stat_idx, bonus) VALUES (?, ?, ?)`,
			charID, idx, bonus,
		); err != nil {
			return fmt.Errorf("insert stat bonus %d for char %d: %w", idx, charID, err)
		}
	}
	return nil
}

// CreateCharacter inserts a brand-new character row for account and
// returns its assigned char id.
func (r *CharacterRepo) CreateCharacter(account, name string, classID int, mapID int, x, y float64) (int, error) {
	res, err := r.db.Exec(
		`INSERT INTO characters (account, name, class_id, level, experience, map_id, x, y, health, mana, gold)
		 VALUES (?, ?, ?, 1, 0, ?, ?, ?, 100, 100, 0)`,
		account, name, classID, mapID, x, y,
	)
	if err != nil {
		return 0, fmt.Errorf("create character %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read new character id: %w", err)
	}
	return int(id), nil
}

// CharacterSummary is the subset of a character row the select screen
// needs, without the sub-store loads Load performs.
type CharacterSummary struct {
	CharID  int
	Name    string
	ClassID int
	Level   int
	MapID   int
}

// ListByAccount returns every non-deleted character owned by account,
// for the character-select list.
func (r *CharacterRepo) ListByAccount(account string) ([]CharacterSummary, error) {
	rows, err := r.db.Query(
		`SELECT char_id, name, class_id, level, map_id FROM characters
		 WHERE account = ? AND deleted_at IS NULL ORDER BY char_id`, account)
	if err != nil {
		return nil, fmt.Errorf("list characters for %s: %w", account, err)
	}
	defer rows.Close()

	var out []CharacterSummary
	for rows.Next() {
		var s CharacterSummary
		if err := rows.Scan(&s.CharID, &s.Name, &s.ClassID, &s.Level, &s.MapID); err != nil {
			return nil, fmt.Errorf("scan character summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteCharacter soft-deletes charID by stamping deleted_at, scoped to
// account so one player cannot delete another's character.
func (r *CharacterRepo) DeleteCharacter(account string, charID int, now int64) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE characters SET deleted_at = ? WHERE char_id = ? AND account = ? AND deleted_at IS NULL`,
		now, charID, account)
	if err != nil {
		return false, fmt.Errorf("delete character %d: %w", charID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read delete result for character %d: %w", charID, err)
	}
	return n > 0, nil
}
