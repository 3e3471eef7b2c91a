package handler

import (
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

// HandleTalkToNPC processes [npcGUID], building the combined gossip
// payload (menu text, vendor stock, quest offers/turn-ins) as a single
// message.
func HandleTalkToNPC(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	npcGUID := entity.GUID(r.ReadUint32())
	npc := deps.Entities.Get(npcGUID)
	if npc == nil || npc.Dead {
		sendError(sess, ErrInvalidTarget)
		return
	}
	if !p.InRange(npc, MeleeRange*2) {
		sendError(sess, ErrOutOfRange)
		return
	}

	templateID := deps.npcTemplateID(npc)
	msg := systems.BuildGossip(deps.Content, ps.QuestLog, int(p.Variable(entity.VarLevel)), templateID)
	sendGossip(sess, npcGUID, msg)
}

func sendGossip(sess *session.Session, npcGUID entity.GUID, msg systems.GossipMessage) {
	w := newWriter(OpSGossip)
	w.WriteUint32(uint32(npcGUID))
	w.WriteUint32(uint32(msg.TextID))
	w.WriteUint8(uint8(len(msg.Options)))
	for _, opt := range msg.Options {
		w.WriteString(opt)
	}
	w.WriteUint8(uint8(len(msg.Stock)))
	for _, item := range msg.Stock {
		w.WriteUint32(uint32(item.ItemID))
		w.WriteUint32(uint32(item.Price))
	}
	w.WriteUint8(uint8(len(msg.Offers)))
	for _, q := range msg.Offers {
		w.WriteUint32(uint32(q))
	}
	w.WriteUint8(uint8(len(msg.TurnIns)))
	for _, q := range msg.TurnIns {
		w.WriteUint32(uint32(q))
	}
	w.WriteUint8(uint8(msg.Status))
	sess.SendPacket(w.Bytes())
}
