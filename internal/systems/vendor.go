package systems

import (
	"errors"

	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
)

// MaxBuybackEntries bounds the per-player, per-NPC buyback ring; the
// oldest sold item is evicted once it overflows
const MaxBuybackEntries = 12

var (
	ErrInsufficientGold = errors.New("not enough gold")
	ErrVendorUnknown    = errors.New("vendor sells no such item")
)

// BuybackEntry is one previously-sold item a player can repurchase at
// its sale price, oldest first.
type BuybackEntry struct {
	ItemID int
	Count  int
	Price  int64
}

// Vendor tracks the buyback ring for one (player, NPC) pair. Stock
// itself comes straight from content.Cache.VendorStock and is not
// mutated by sales -- it stays a read-only template slice.
type Vendor struct {
	buyback map[vendorKey][]BuybackEntry
}

type vendorKey struct {
	player entity.GUID
	npcTemplateID int
}

func NewVendor() *Vendor {
	return &Vendor{buyback: make(map[vendorKey][]BuybackEntry)}
}

// Stock returns the NPC's sellable items from the content cache.
func Stock(cache *content.Cache, npcTemplateID int) []content.VendorItem {
	return cache.VendorStock[npcTemplateID]
}

// Buy charges gold and adds count of itemID to inv, failing with
// ErrVendorUnknown if the NPC doesn't stock it, ErrInsufficientGold if
// the player can't afford it, or a plain false if the inventory has no
// room.
func Buy(cache *content.Cache, player *entity.Entity, inv *Inventory, npcTemplateID, itemID, count int) (bool, error) {
	var price int64 = -1
	for _, v := range cache.VendorStock[npcTemplateID] {
		if v.ItemID == itemID {
			price = v.Price
			break
		}
	}
	if price < 0 {
		return false, ErrVendorUnknown
	}
	total := price * int64(count)
	gold := int64(player.Variable(entity.VarGold))
	if gold < total {
		return false, ErrInsufficientGold
	}
	tpl := cache.Items[itemID]
	stackable := tpl != nil && tpl.MaxStack > 1
	maxStack := 0
	if tpl != nil {
		maxStack = tpl.MaxStack
	}
	if !inv.Add(itemID, count, stackable, maxStack) {
		return false, nil
	}
	player.SetVariable(entity.VarGold, int32(gold-total))
	return true, nil
}

// Sell removes objID (up to count) from inv, credits the player at
// sellPrice per unit, and records the sale in the buyback ring for this
// NPC, evicting the oldest entry past MaxBuybackEntries.
func (v *Vendor) Sell(player *entity.Entity, inv *Inventory, npcTemplateID int, objID int64, count int, sellPrice int64) bool {
	it := inv.FindByObjectID(objID)
	if it == nil || count <= 0 || count > it.Count {
		return false
	}
	itemID := it.ItemID
	if !inv.Remove(objID, count) {
		return false
	}
	gold := int64(player.Variable(entity.VarGold))
	player.SetVariable(entity.VarGold, int32(gold+sellPrice*int64(count)))

	key := vendorKey{player: player.GUID, npcTemplateID: npcTemplateID}
	ring := v.buyback[key]
	ring = append(ring, BuybackEntry{ItemID: itemID, Count: count, Price: sellPrice})
	if len(ring) > MaxBuybackEntries {
		ring = ring[len(ring)-MaxBuybackEntries:]
	}
	v.buyback[key] = ring
	return true
}

// Buyback returns the buyback ring for (player, npc), most-recent last.
func (v *Vendor) Buyback(player entity.GUID, npcTemplateID int) []BuybackEntry {
	return v.buyback[vendorKey{player: player, npcTemplateID: npcTemplateID}]
}

// Repurchase buys back ring entry idx at its original sale price,
// removing it from the ring on success.
func (v *Vendor) Repurchase(player *entity.Entity, inv *Inventory, npcTemplateID int, idx int, lookup ItemLookup) bool {
	key := vendorKey{player: player.GUID, npcTemplateID: npcTemplateID}
	ring := v.buyback[key]
	if idx < 0 || idx >= len(ring) {
		return false
	}
	entry := ring[idx]
	total := entry.Price * int64(entry.Count)
	gold := int64(player.Variable(entity.VarGold))
	if gold < total {
		return false
	}
	tpl := lookup(entry.ItemID)
	stackable, maxStack := false, 0
	if tpl != nil {
		stackable, maxStack = tpl.MaxStack > 1, tpl.MaxStack
	}
	if !inv.Add(entry.ItemID, entry.Count, stackable, maxStack) {
		return false
	}
	player.SetVariable(entity.VarGold, int32(gold-total))
	v.buyback[key] = append(ring[:idx], ring[idx+1:]...)
	return true
}
