package handler

import (
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/systems"
)

// sendTo looks up the live session owning guid and writes payload to it.
// A miss (player logged out between computing the target list and
// sending) is silently dropped -- best-effort broadcast semantics.
func (d *Deps) sendTo(guid entity.GUID, payload []byte) {
	if sess, ok := d.SessionOf[guid]; ok {
		sess.SendPacket(payload)
	}
}

// broadcast sends payload to every GUID in targets.
func (d *Deps) broadcast(targets []entity.GUID, payload []byte) {
	for _, g := range targets {
		d.sendTo(g, payload)
	}
}

// nearbyLookup adapts world.Registry's map-local broadcast list into the
// systems.NearbyLookup shape chat.Route expects, keeping only players
// within radius of (x, y).
func (d *Deps) nearbyLookup(mapID int, x, y, radius float64) []entity.GUID {
	var out []entity.GUID
	for _, guid := range d.World.BroadcastToMap(mapID, 0) {
		p := d.World.GetPlayer(guid)
		if p == nil {
			continue
		}
		dx, dy := p.X-x, p.Y-y
		if dx*dx+dy*dy <= radius*radius {
			out = append(out, guid)
		}
	}
	return out
}

// ignoreListOf adapts a player's in-memory ignore list into the shape
// systems.Route expects to filter recipients who ignore the sender.
func (d *Deps) ignoreListOf(guid entity.GUID) *systems.IgnoreList {
	ps, ok := d.Players[guid]
	if !ok {
		return nil
	}
	return ps.Ignore
}
