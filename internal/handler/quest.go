package handler

import (
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

func sendQuestUpdate(sess *session.Session, log *systems.QuestLog, questID int) {
	state := log.Get(questID)
	w := newWriter(OpSQuestUpdate)
	w.WriteUint32(uint32(questID))
	if state == nil {
		w.WriteUint8(0)
	} else {
		w.WriteUint8(uint8(state.Status))
		for _, p := range state.Progress {
			w.WriteUint16(uint16(p))
		}
	}
	sess.SendPacket(w.Bytes())
}

// HandleQuestAccept processes [questID].
func HandleQuestAccept(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	questID := int(r.ReadUint32())
	if !systems.IsAvailable(deps.Content, ps.QuestLog, int(p.Variable(entity.VarLevel)), questID) {
		sendError(sess, ErrQuestNotAvailable)
		return
	}
	if !systems.Accept(deps.Content, ps.QuestLog, int(p.Variable(entity.VarLevel)), questID) {
		sendError(sess, ErrQuestLogFull)
		return
	}
	sendQuestUpdate(sess, ps.QuestLog, questID)
}

// HandleQuestAbandon processes [questID].
func HandleQuestAbandon(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	questID := int(r.ReadUint32())
	systems.Abandon(ps.QuestLog, questID)
	sendQuestUpdate(sess, ps.QuestLog, questID)
}

// HandleQuestComplete processes [questID].
func HandleQuestComplete(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	ps := deps.playerState(sess)
	if p == nil || ps == nil {
		return
	}
	questID := int(r.ReadUint32())
	if !systems.Complete(deps.Content, ps.QuestLog, p, ps.Inventory, questID) {
		sendError(sess, ErrQuestNotComplete)
		return
	}
	sendQuestUpdate(sess, ps.QuestLog, questID)
	sendInventoryUpdate(sess, ps.Inventory)
}
