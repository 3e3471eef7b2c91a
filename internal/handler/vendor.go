package handler

import (
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

// HandleVendorBuy processes [npcTemplateID][itemID][count].
func HandleVendorBuy(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	npcTemplateID := int(r.ReadUint32())
	itemID := int(r.ReadUint32())
	count := int(r.ReadUint16())

	ok, err := systems.Buy(deps.Content, p, ps.Inventory, npcTemplateID, itemID, count)
	if err != nil {
		sendError(sess, vendorErrorCode(err))
		return
	}
	if !ok {
		sendError(sess, ErrInventoryFull)
		return
	}
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleVendorSell processes [npcTemplateID][objectID][count][price].
func HandleVendorSell(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	npcTemplateID := int(r.ReadUint32())
	objID := int64(r.ReadUint32())
	count := int(r.ReadUint16())
	price := int64(r.ReadUint32())

	if !deps.Vendors.Sell(p, ps.Inventory, npcTemplateID, objID, count, price) {
		sendError(sess, ErrGeneric)
		return
	}
	sendInventoryUpdate(sess, ps.Inventory)
}

// HandleVendorRepurchase processes [npcTemplateID][buybackIndex].
func HandleVendorRepurchase(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	npcTemplateID := int(r.ReadUint32())
	idx := int(r.ReadUint16())

	if !deps.Vendors.Repurchase(p, ps.Inventory, npcTemplateID, idx, deps.itemLookupFn) {
		sendError(sess, ErrNotEnoughGold)
		return
	}
	sendInventoryUpdate(sess, ps.Inventory)
}

func vendorErrorCode(err error) ErrorCode {
	switch err {
	case systems.ErrInsufficientGold:
		return ErrNotEnoughGold
	case systems.ErrVendorUnknown:
		return ErrVendorUnknown
	default:
		return ErrGeneric
	}
}
