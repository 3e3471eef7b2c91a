package handler

import (
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

func sendChatMessage(deps *Deps, targets []entity.GUID, msg systems.ChatMessage) {
	w := newWriter(OpSChatMessage)
	w.WriteUint8(uint8(msg.Channel))
	w.WriteUint32(uint32(msg.Sender))
	w.WriteString(msg.Text)
	payload := w.Bytes()
	if msg.Channel == systems.ChatGlobal || msg.Channel == systems.ChatSystem {
		for _, guid := range deps.World.BroadcastGlobal(0) {
			deps.sendTo(guid, payload)
		}
		return
	}
	deps.broadcast(targets, payload)
}

func (d *Deps) routeChat(sess *session.Session, channel systems.ChatChannel, target entity.GUID, text string) {
	p := sess.Player()
	if p == nil {
		return
	}
	if !d.ChatLimiter.Allow(p.GUID, d.Tick()) {
		sendError(sess, ErrRateLimited)
		return
	}
	msg := systems.ChatMessage{Sender: p.GUID, Channel: channel, Target: target, Text: text}
	targets := systems.Route(msg, p.MapID, p.X, p.Y, d.nearbyLookup, nil, d.ignoreListOf)
	sendChatMessage(d, targets, msg)
}

// HandleChatSay processes [text].
func HandleChatSay(deps *Deps, sess *session.Session, r *wire.Reader) {
	deps.routeChat(sess, systems.ChatSay, 0, r.ReadString())
}

// HandleChatYell processes [text].
func HandleChatYell(deps *Deps, sess *session.Session, r *wire.Reader) {
	deps.routeChat(sess, systems.ChatYell, 0, r.ReadString())
}

// HandleChatWhisper processes [targetGUID][text].
func HandleChatWhisper(deps *Deps, sess *session.Session, r *wire.Reader) {
	target := entity.GUID(r.ReadUint32())
	deps.routeChat(sess, systems.ChatWhisper, target, r.ReadString())
}

// HandleChatGuild processes [text]. Guild membership is out of this
// module's scope, so this routes to nobody but still validates rate
// limits -- a future guild system plugs in a GroupLookup here.
func HandleChatGuild(deps *Deps, sess *session.Session, r *wire.Reader) {
	deps.routeChat(sess, systems.ChatGuild, 0, r.ReadString())
}

// HandleChatGlobal processes [text].
func HandleChatGlobal(deps *Deps, sess *session.Session, r *wire.Reader) {
	deps.routeChat(sess, systems.ChatGlobal, 0, r.ReadString())
}

// HandleIgnoreAdd processes [targetGUID].
func HandleIgnoreAdd(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	ps.Ignore.Add(entity.GUID(r.ReadUint32()))
}

// HandleIgnoreRemove processes [targetGUID].
func HandleIgnoreRemove(deps *Deps, sess *session.Session, r *wire.Reader) {
	ps := deps.playerState(sess)
	if ps == nil {
		return
	}
	ps.Ignore.Remove(entity.GUID(r.ReadUint32()))
}
