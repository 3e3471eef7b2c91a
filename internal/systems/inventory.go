// Package systems implements the small per-domain APIs: inventory,
// equipment, bank, loot, vendor, quest log, experience, chat, and gossip.
// Each type owns its own slot/state data and is driven by the handler
// layer; none of them reach into the world registry or session directly.
package systems

import (
	"sort"

	"github.com/dreadmyst/server/internal/persist"
)

// MaxInventorySlots bounds a player's carried-item slots.
const MaxInventorySlots = 120

// Item is a single item instance, stackable items sharing one slot per
// template id up to the template's max stack.
type Item struct {
	ObjectID   int64
	ItemID     int
	Count      int
	Durability int
	Affixes    string
	GemSlots   string
	Equipped   bool
}

// QuestItemHook is invoked whenever a quest-relevant item's count changes,
// so the quest log can re-resolve item-count objectives without
// Inventory depending on the QuestLog type.
type QuestItemHook func(itemID int, newCount int)

// Inventory holds a player's in-memory item list, keyed by a stable
// object id assigned on insertion.
type Inventory struct {
	Items    []*Item
	MaxSlots int
	nextObjID int64
	OnQuestItemChange QuestItemHook
}

func NewInventory() *Inventory {
	return &Inventory{Items: make([]*Item, 0, 16), MaxSlots: MaxInventorySlots}
}

func (inv *Inventory) fireHook(itemID int) {
	if inv.OnQuestItemChange == nil {
		return
	}
	inv.OnQuestItemChange(itemID, inv.CountOf(itemID))
}

// CountOf returns the total count across every slot holding itemID.
func (inv *Inventory) CountOf(itemID int) int {
	total := 0
	for _, it := range inv.Items {
		if it.ItemID == itemID {
			total += it.Count
		}
	}
	return total
}

// FindByItemID returns the first slot holding itemID, or nil.
func (inv *Inventory) FindByItemID(itemID int) *Item {
	for _, it := range inv.Items {
		if it.ItemID == itemID {
			return it
		}
	}
	return nil
}

// FindByObjectID returns the slot with the given object id, or nil.
func (inv *Inventory) FindByObjectID(objID int64) *Item {
	for _, it := range inv.Items {
		if it.ObjectID == objID {
			return it
		}
	}
	return nil
}

func (inv *Inventory) IsFull() bool { return len(inv.Items) >= inv.MaxSlots }

// Add inserts count of itemID, stacking onto an existing slot when
// maxStack allows it and splitting the remainder into new slots
// otherwise. Returns false if the inventory has no room for any of it.
func (inv *Inventory) Add(itemID int, count int, stackable bool, maxStack int) bool {
	if count <= 0 {
		return false
	}
	added := false
	if stackable {
		if existing := inv.FindByItemID(itemID); existing != nil {
			room := maxStack - existing.Count
			if room < 0 {
				room = 0
			}
			take := count
			if maxStack > 0 && take > room {
				take = room
			}
			existing.Count += take
			count -= take
			if take > 0 {
				added = true
			}
		}
	}
	for count > 0 && !inv.IsFull() {
		take := count
		if stackable && maxStack > 0 && take > maxStack {
			take = maxStack
		}
		inv.nextObjID++
		inv.Items = append(inv.Items, &Item{ObjectID: inv.nextObjID, ItemID: itemID, Count: take})
		count -= take
		added = true
		if !stackable {
			break
		}
	}
	if added {
		inv.fireHook(itemID)
	}
	return added && count == 0
}

// Remove takes count off objID's slot, deleting the slot when its count
// reaches zero. Returns true if count was fully removed.
func (inv *Inventory) Remove(objID int64, count int) bool {
	for i, it := range inv.Items {
		if it.ObjectID != objID {
			continue
		}
		if count > it.Count {
			return false
		}
		it.Count -= count
		itemID := it.ItemID
		if it.Count == 0 {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
		}
		inv.fireHook(itemID)
		return true
	}
	return false
}

// Move reorders item at fromIdx so it lands just before the item that was
// at toIdx, shifting slots between.
func (inv *Inventory) Move(fromIdx, toIdx int) bool {
	n := len(inv.Items)
	if fromIdx < 0 || fromIdx >= n || toIdx < 0 || toIdx >= n || fromIdx == toIdx {
		return false
	}
	it := inv.Items[fromIdx]
	inv.Items = append(inv.Items[:fromIdx], inv.Items[fromIdx+1:]...)
	if toIdx > fromIdx {
		toIdx--
	}
	inv.Items = append(inv.Items[:toIdx], append([]*Item{it}, inv.Items[toIdx:]...)...)
	return true
}

// Split peels count off objID's slot into a brand new slot, failing if
// the inventory is full or count would empty or overflow the source.
func (inv *Inventory) Split(objID int64, count int) (*Item, bool) {
	if inv.IsFull() {
		return nil, false
	}
	src := inv.FindByObjectID(objID)
	if src == nil || count <= 0 || count >= src.Count {
		return nil, false
	}
	src.Count -= count
	inv.nextObjID++
	newItem := &Item{ObjectID: inv.nextObjID, ItemID: src.ItemID, Count: count, Durability: src.Durability}
	inv.Items = append(inv.Items, newItem)
	return newItem, true
}

// Sort orders slots by item id then descending count.
func (inv *Inventory) Sort() {
	sort.SliceStable(inv.Items, func(i, j int) bool {
		a, b := inv.Items[i], inv.Items[j]
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.Count > b.Count
	})
}

// ToSlots converts the live inventory into persist.ItemSlot rows,
// assigning slot indices by current order.
func (inv *Inventory) ToSlots() []persist.ItemSlot {
	out := make([]persist.ItemSlot, 0, len(inv.Items))
	for i, it := range inv.Items {
		out = append(out, persist.ItemSlot{
			Slot: i, ItemID: it.ItemID, Count: it.Count,
			Durability: it.Durability, Affixes: it.Affixes, GemSlots: it.GemSlots,
		})
	}
	return out
}

// LoadSlots replaces the inventory contents from persisted rows, ordered
// by slot index, reassigning fresh object ids.
func (inv *Inventory) LoadSlots(rows []persist.ItemSlot) {
	sorted := append([]persist.ItemSlot(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })
	inv.Items = inv.Items[:0]
	for _, r := range sorted {
		inv.nextObjID++
		inv.Items = append(inv.Items, &Item{
			ObjectID: inv.nextObjID, ItemID: r.ItemID, Count: r.Count,
			Durability: r.Durability, Affixes: r.Affixes, GemSlots: r.GemSlots,
		})
	}
}
