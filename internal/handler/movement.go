package handler

import (
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/wire"
)

// HandleMove processes [x][y][facing]: updates the player's position and
// applies the resulting visibility delta Unlike a manual
// two-set diff, world.Registry.OnPlayerMoved already returns exactly the
// appear/disappear pairs this tick produced.
func HandleMove(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	if p == nil {
		return
	}
	newX := r.ReadFloat64()
	newY := r.ReadFloat64()
	facing := r.ReadFloat64()

	if grid, err := deps.Maps.Get(p.MapID); err == nil {
		cell := grid.CellIDFromWorldPos(newX, newY)
		if !grid.IsWalkable(cell) {
			sendError(sess, ErrOutOfRange)
			return
		}
	}

	oldX, oldY := p.X, p.Y
	p.X, p.Y, p.Facing = newX, newY, facing

	delta := deps.World.OnPlayerMoved(p, oldX, oldY)
	for _, a := range delta.Appeared {
		sendEntityAppear(sess, a)
	}
	for _, guid := range delta.Disappeared {
		sess.SendPacket(buildEntityDisappear(guid))
	}

	moveMsg := buildEntityMove(p)
	for _, viewer := range deps.World.BroadcastToVisible(p.GUID, p.GUID) {
		deps.sendTo(viewer, moveMsg)
	}
}

func buildEntityMove(e *entity.Entity) []byte {
	w := newWriter(OpSEntityMove)
	w.WriteUint32(uint32(e.GUID))
	w.WriteFloat64(e.X)
	w.WriteFloat64(e.Y)
	w.WriteFloat64(e.Facing)
	return w.Bytes()
}

// HandlePing keeps the in-world ping timeout budget from expiring.
func HandlePing(deps *Deps, sess *session.Session, r *wire.Reader) {
	sess.UpdateLastActivity()
	sess.UpdateLastPing()
	w := newWriter(OpSPing)
	sess.SendPacket(w.Bytes())
}

// HandleRespawnRequest processes a dead player's request to return to
// the world "awaiting a respawn request" death path.
func HandleRespawnRequest(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	if p == nil || !p.Dead {
		return
	}
	ls := deps.Content.LevelStats(int(p.Variable(entity.VarClassID)), int(p.Variable(entity.VarLevel)))
	maxHealth := p.Variable(entity.VarMaxHealth)
	if ls != nil {
		maxHealth = int32(ls.MaxHealth)
	}
	p.Dead = false
	p.SetVariable(entity.VarHealth, maxHealth)

	_, res := deps.World.ChangePlayerMap(p, StartMapID, StartX, StartY)
	sendWorldEnter(sess, p)
	for _, other := range res.VisibleToNew {
		sendEntityAppear(sess, other)
	}
	appear := buildEntityAppear(p)
	for _, guid := range res.NotifyOthers {
		if guid != p.GUID {
			deps.sendTo(guid, appear)
		}
	}
}
