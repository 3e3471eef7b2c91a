package systems

import (
	"errors"

	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/persist"
)

// EquipSlot identifies a wearable slot.
type EquipSlot int

const (
	SlotNone EquipSlot = iota
	SlotHead
	SlotChest
	SlotHands
	SlotFeet
	SlotShield
	SlotCloak
	SlotRing1
	SlotRing2
	SlotAmulet
	SlotBelt
	SlotWeapon
	SlotMax
)

var (
	ErrWrongClass    = errors.New("class cannot use this item")
	ErrLevelTooLow   = errors.New("level too low for this item")
	ErrWrongSlotType = errors.New("item has no equip slot")
	ErrSlotTaken     = errors.New("slot already occupied")
)

// Equipment tracks what a player currently has worn, one item per slot.
type Equipment struct {
	Slots [SlotMax]*Item
}

func NewEquipment() *Equipment { return &Equipment{} }

func (e *Equipment) Get(slot EquipSlot) *Item {
	if slot <= SlotNone || slot >= SlotMax {
		return nil
	}
	return e.Slots[slot]
}

func (e *Equipment) Weapon() *Item { return e.Slots[SlotWeapon] }

// SlotForItem maps a content item's SlotType field to an EquipSlot.
// Ring items (SlotType 7) resolve to whichever ring slot is
// open, preferring Ring1.
func SlotForItem(tpl *content.Item, e *Equipment) EquipSlot {
	switch tpl.SlotType {
	case 1:
		return SlotHead
	case 2:
		return SlotChest
	case 3:
		return SlotHands
	case 4:
		return SlotFeet
	case 5:
		return SlotShield
	case 6:
		return SlotCloak
	case 7:
		if e.Slots[SlotRing1] == nil {
			return SlotRing1
		}
		return SlotRing2
	case 8:
		return SlotAmulet
	case 9:
		return SlotBelt
	case 10:
		return SlotWeapon
	default:
		return SlotNone
	}
}

// EquipStats is the cumulative stat bonus from every worn item.
type EquipStats struct {
	AddHealth int32
	AddMana   int32
	Stats     [8]int32
}

// ItemLookup resolves an inventory Item's template id to its content
// record. Injected so this package never imports internal/content's
// loader directly into call sites that already have a *content.Cache.
type ItemLookup func(itemID int) *content.Item

// Equip moves item from the inventory into its slot, gated by class and
// level; an item already in that slot is first moved back to the
// inventory. Two-handed weapons are out
// of simplified item model; a weapon always occupies
// SlotWeapon alone.
func Equip(eq *Equipment, inv *Inventory, player *entity.Entity, objID int64, lookup ItemLookup) error {
	it := inv.FindByObjectID(objID)
	if it == nil {
		return errors.New("item not found")
	}
	tpl := lookup(it.ItemID)
	if tpl == nil {
		return errors.New("unknown item template")
	}
	if tpl.MinLevel > 0 && int(player.Variable(entity.VarLevel)) < tpl.MinLevel {
		return ErrLevelTooLow
	}
	classBit := int64(1) << uint(player.Variable(entity.VarClassID))
	if tpl.EquipClasses != 0 && tpl.EquipClasses&classBit == 0 {
		return ErrWrongClass
	}
	slot := SlotForItem(tpl, eq)
	if slot == SlotNone {
		return ErrWrongSlotType
	}
	if cur := eq.Slots[slot]; cur != nil {
		if err := Unequip(eq, inv, slot); err != nil {
			return err
		}
	}
	for i, held := range inv.Items {
		if held == it {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			break
		}
	}
	eq.Slots[slot] = it
	it.Equipped = true
	return nil
}

// Unequip clears slot and returns the item to inv, failing if the
// inventory has no room.
func Unequip(eq *Equipment, inv *Inventory, slot EquipSlot) error {
	it := eq.Get(slot)
	if it == nil {
		return nil
	}
	if inv.IsFull() {
		return errors.New("inventory full")
	}
	eq.Slots[slot] = nil
	it.Equipped = false
	inv.Items = append(inv.Items, it)
	return nil
}

// Recalc sums every worn item's stat contribution (looked up via bonus,
// which must expose per-item AddHealth/AddMana/Stats fields through the
// content cache's item table extension point) and applies the delta onto
// player's variables by diffing old vs. new bonus totals rather than
// re-deriving base stats.
func Recalc(eq *Equipment, player *entity.Entity, prev EquipStats, bonus func(*Item) EquipStats) EquipStats {
	var total EquipStats
	for i := EquipSlot(1); i < SlotMax; i++ {
		it := eq.Slots[i]
		if it == nil {
			continue
		}
		b := bonus(it)
		total.AddHealth += b.AddHealth
		total.AddMana += b.AddMana
		for j := 0; j < 8; j++ {
			total.Stats[j] += b.Stats[j]
		}
	}

	player.SetVariable(entity.VarMaxHealth, player.Variable(entity.VarMaxHealth)-prev.AddHealth+total.AddHealth)
	player.SetVariable(entity.VarMaxMana, player.Variable(entity.VarMaxMana)-prev.AddMana+total.AddMana)
	for j := 0; j < 8; j++ {
		player.SetStat(j, player.Stat(j)-prev.Stats[j]+total.Stats[j])
	}
	if player.Variable(entity.VarHealth) > player.Variable(entity.VarMaxHealth) {
		player.SetVariable(entity.VarHealth, player.Variable(entity.VarMaxHealth))
	}
	if player.Variable(entity.VarMana) > player.Variable(entity.VarMaxMana) {
		player.SetVariable(entity.VarMana, player.Variable(entity.VarMaxMana))
	}
	return total
}

func (e *Equipment) ToSlots() []persist.ItemSlot {
	out := make([]persist.ItemSlot, 0, SlotMax-1)
	for i := EquipSlot(1); i < SlotMax; i++ {
		it := e.Slots[i]
		if it == nil {
			continue
		}
		out = append(out, persist.ItemSlot{
			Slot: int(i), ItemID: it.ItemID, Count: it.Count,
			Durability: it.Durability, Affixes: it.Affixes, GemSlots: it.GemSlots,
		})
	}
	return out
}

func (e *Equipment) LoadSlots(rows []persist.ItemSlot) {
	for i := range e.Slots {
		e.Slots[i] = nil
	}
	for _, r := range rows {
		slot := EquipSlot(r.Slot)
		if slot <= SlotNone || slot >= SlotMax {
			continue
		}
		e.Slots[slot] = &Item{
			ItemID: r.ItemID, Count: r.Count, Durability: r.Durability,
			Affixes: r.Affixes, GemSlots: r.GemSlots, Equipped: true,
		}
	}
}
