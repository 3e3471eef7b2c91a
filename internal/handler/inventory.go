package handler

import (
	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

// itemLookupFn adapts the content cache's item table into the
// systems.ItemLookup shape Equip expects.
func (d *Deps) itemLookupFn(itemID int) *content.Item {
	return d.Content.Items[itemID]
}

func sendInventoryUpdate(sess *session.Session, inv *systems.Inventory) {
	w := newWriter(OpSInventoryUpdate)
	w.WriteUint16(uint16(len(inv.Items)))
	for _, it := range inv.Items {
		w.WriteUint32(uint32(it.ObjectID))
		w.WriteUint32(uint32(it.ItemID))
		w.WriteUint16(uint16(it.Count))
	}
	sess.SendPacket(w.Bytes())
}

// HandleInventoryMove processes [fromSlot][toSlot].
func HandleInventoryMove(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	from := int(r.ReadUint16())
	to := int(r.ReadUint16())
	ps.Inventory.Move(from, to)
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleInventorySplit processes [objectID][count].
func HandleInventorySplit(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	objID := int64(r.ReadUint32())
	count := int(r.ReadUint16())
	if ps.Inventory.IsFull() {
		sendError(sess, ErrInventoryFull)
		return
	}
	ps.Inventory.Split(objID, count)
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleInventorySort processes a bare sort request.
func HandleInventorySort(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	ps.Inventory.Sort()
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleEquip processes [objectID].
func HandleEquip(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	objID := int64(r.ReadUint32())

	if err := systems.Equip(ps.Equipment, ps.Inventory, p, objID, deps.itemLookupFn); err != nil {
		sendError(sess, equipErrorCode(err))
		return
	}
	ps.EquipStats = systems.Recalc(ps.Equipment, p, ps.EquipStats, func(*systems.Item) systems.EquipStats { return systems.EquipStats{} })
	sendInventoryUpdate(sess, ps.Inventory)
	sendEquipmentUpdate(sess, ps.Equipment)
}

// HandleUnequip processes [slot].
func HandleUnequip(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	slot := systems.EquipSlot(r.ReadUint8())
	if err := systems.Unequip(ps.Equipment, ps.Inventory, slot); err != nil {
		sendError(sess, ErrInventoryFull)
		return
	}
	ps.EquipStats = systems.Recalc(ps.Equipment, p, ps.EquipStats, func(*systems.Item) systems.EquipStats { return systems.EquipStats{} })
	sendInventoryUpdate(sess, ps.Inventory)
	sendEquipmentUpdate(sess, ps.Equipment)
}

func equipErrorCode(err error) ErrorCode {
	switch err {
	case systems.ErrWrongClass:
		return ErrWrongClass
	case systems.ErrLevelTooLow:
		return ErrLevelTooLow
	case systems.ErrWrongSlotType:
		return ErrWrongSlotType
	default:
		return ErrGeneric
	}
}

func sendEquipmentUpdate(sess *session.Session, eq *systems.Equipment) {
	w := newWriter(OpSEquipmentUpdate)
	slots := eq.ToSlots()
	w.WriteUint8(uint8(len(slots)))
	for _, s := range slots {
		w.WriteUint8(uint8(s.Slot))
		w.WriteUint32(uint32(s.ItemID))
	}
	sess.SendPacket(w.Bytes())
}

// HandleBankDeposit processes [objectID][count].
func HandleBankDeposit(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	objID := int64(r.ReadUint32())
	count := int(r.ReadUint16())
	if !systems.Deposit(ps.Inventory, ps.Bank, objID, count) {
		sendError(sess, ErrInventoryFull)
		return
	}
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleBankWithdraw processes [objectID][count].
func HandleBankWithdraw(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	objID := int64(r.ReadUint32())
	count := int(r.ReadUint16())
	if !systems.Withdraw(ps.Inventory, ps.Bank, objID, count) {
		sendError(sess, ErrInventoryFull)
		return
	}
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleLootTake processes [corpseGUID][itemID].
func HandleLootTake(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	corpseGUID := entity.GUID(r.ReadUint32())
	itemID := int(r.ReadUint32())

	corpse := deps.NPCCorpses[corpseGUID]
	if corpse == nil || !systems.CanLoot(corpse, p.GUID, func(entity.GUID) []entity.GUID { return nil }) {
		sendError(sess, ErrCannotLoot)
		return
	}
	count := systems.Take(corpse, itemID)
	if count == 0 {
		sendError(sess, ErrCannotLoot)
		return
	}
	tpl := deps.Content.Items[itemID]
	stackable, maxStack := false, 1
	if tpl != nil {
		maxStack = tpl.MaxStack
		stackable = maxStack > 1
	}
	if !ps.Inventory.Add(itemID, count, stackable, maxStack) {
		sendError(sess, ErrInventoryFull)
		return
	}
	sendInventoryUpdate(sess, ps.Inventory)
	if corpse.IsEmpty() {
		delete(deps.NPCCorpses, corpseGUID)
	}
}

// playerState resolves the caller's PlayerState, logging a warning when a
// gated handler somehow runs for a session with no world-entered player.
func (d *Deps) playerState(sess *session.Session) *PlayerState {
	p := sess.Player()
	if p == nil {
		d.Log.Warn("handler invoked without a bound player")
		return nil
	}
	return d.Players[p.GUID]
}
