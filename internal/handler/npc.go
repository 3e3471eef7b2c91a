package handler

import (
	"math"

	"github.com/dreadmyst/server/internal/entity"
)

// NPCWorld builds the npcai.World query surface from this Deps, used by
// cmd/server's tick loop to drive every map's spawner/controller set
// without npcai importing world or handler directly.
func (d *Deps) NPCWorld() (nearestHostile func(*entity.Entity, float64) (entity.GUID, bool),
	entityByGUID func(entity.GUID) *entity.Entity,
	isWalkable func(int, float64, float64) bool,
	randomPointIn func(float64, float64, float64) (float64, float64)) {
	return d.nearestHostilePlayer, d.Entities.Get, d.isWalkable, d.randomPointIn
}

func (d *Deps) nearestHostilePlayer(npc *entity.Entity, radius float64) (entity.GUID, bool) {
	var best entity.GUID
	bestDist := math.MaxFloat64
	found := false
	for guid := range d.Players {
		p := d.Entities.Get(guid)
		if p == nil || p.Dead || p.MapID != npc.MapID {
			continue
		}
		dist := npc.DistanceTo(p)
		if dist > radius {
			continue
		}
		if dist < bestDist {
			best, bestDist, found = guid, dist, true
		}
	}
	return best, found
}

func (d *Deps) isWalkable(mapID int, x, y float64) bool {
	grid, err := d.Maps.Get(mapID)
	if err != nil {
		return false
	}
	return grid.IsWalkable(grid.CellIDFromWorldPos(x, y))
}

func (d *Deps) randomPointIn(centerX, centerY, radius float64) (float64, float64) {
	angle := d.Rng.Float64() * 2 * math.Pi
	dist := d.Rng.Float64() * radius
	return centerX + math.Cos(angle)*dist, centerY + math.Sin(angle)*dist
}

// BroadcastNPCMove sends npc's current position to every session with
// it in view. Called once per tick for every live AI controller.
func (d *Deps) BroadcastNPCMove(npc *entity.Entity) {
	msg := buildEntityMove(npc)
	for _, viewer := range d.World.BroadcastToVisible(npc.GUID, 0) {
		d.sendTo(viewer, msg)
	}
}

// NPCAttack performs one NPC melee attack against target, used as the
// npcai.AttackFunc wired in by the tick loop. Damage scales off the
// attacker's level the same way content.LevelStats drives player damage,
// since NPC templates carry no separate weapon formula in this model.
func (d *Deps) NPCAttack(npc, target *entity.Entity) bool {
	base := float64(npc.Variable(entity.VarLevel))*2 + 4
	d.dealDamageRolled(npc, target, base, true, false)
	return target.Dead
}
