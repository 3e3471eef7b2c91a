package systems

import "github.com/dreadmyst/server/internal/persist"

// MaxBankSlots bounds a player's banked-item slots.
const MaxBankSlots = 160

// Bank is a storage container parallel to Inventory with its own slot
// array and capacity It reuses Inventory's add/remove/
// move/sort mechanics rather than duplicating them.
type Bank struct {
	inv *Inventory
}

func NewBank() *Bank {
	inv := NewInventory()
	inv.MaxSlots = MaxBankSlots
	return &Bank{inv: inv}
}

func (b *Bank) IsFull() bool { return b.inv.IsFull() }

func (b *Bank) Items() []*Item { return b.inv.Items }

func (b *Bank) FindByObjectID(objID int64) *Item { return b.inv.FindByObjectID(objID) }

func (b *Bank) Add(itemID int, count int, stackable bool, maxStack int) bool {
	return b.inv.Add(itemID, count, stackable, maxStack)
}

func (b *Bank) Remove(objID int64, count int) bool { return b.inv.Remove(objID, count) }

func (b *Bank) Move(fromIdx, toIdx int) bool { return b.inv.Move(fromIdx, toIdx) }

func (b *Bank) Sort() { b.inv.Sort() }

func (b *Bank) ToSlots() []persist.ItemSlot { return b.inv.ToSlots() }

func (b *Bank) LoadSlots(rows []persist.ItemSlot) { b.inv.LoadSlots(rows) }

// Deposit moves count of objID from inv into the bank.
func Deposit(inv *Inventory, bank *Bank, objID int64, count int) bool {
	src := inv.FindByObjectID(objID)
	if src == nil || count <= 0 || count > src.Count {
		return false
	}
	if !bank.Add(src.ItemID, count, count < src.Count || src.Count > 1, 0) {
		return false
	}
	return inv.Remove(objID, count)
}

// Withdraw moves count of objID from the bank into inv.
func Withdraw(inv *Inventory, bank *Bank, objID int64, count int) bool {
	src := bank.FindByObjectID(objID)
	if src == nil || count <= 0 || count > src.Count {
		return false
	}
	if inv.IsFull() && inv.FindByItemID(src.ItemID) == nil {
		return false
	}
	if !inv.Add(src.ItemID, count, count < src.Count || src.Count > 1, 0) {
		return false
	}
	return bank.Remove(objID, count)
}
