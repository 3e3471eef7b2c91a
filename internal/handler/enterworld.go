package handler

import (
	"go.uber.org/zap"

	"github.com/dreadmyst/server/internal/combat"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/persist"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

// HandleEnterWorld processes [charID]: loads the character row, builds
// its live entity and player state, spawns it into the world registry,
// and binds it to the session, completing the authenticated -> in-world
// transition.
func HandleEnterWorld(deps *Deps, sess *session.Session, r *wire.Reader) {
	charID := int(r.ReadUint32())

	row, err := deps.Characters.LoadByID(charID)
	if err != nil {
		deps.Log.Error("load character for world entry", zap.Error(err))
		sendError(sess, ErrGeneric)
		return
	}
	if row == nil || row.Account != sess.Account() {
		sendError(sess, ErrCharacterNotFound)
		return
	}

	p := deps.Entities.CreatePlayer(row.Name)
	p.MapID, p.X, p.Y = row.MapID, row.X, row.Y
	p.SetVariable(entity.VarHealth, int32(row.Health))
	p.SetVariable(entity.VarMana, int32(row.Mana))
	p.SetVariable(entity.VarLevel, int32(row.Level))
	p.SetVariable(entity.VarExperience, int32(row.Experience))
	p.SetVariable(entity.VarGold, int32(row.Gold))
	p.SetVariable(entity.VarClassID, int32(row.ClassID))
	ls := deps.Content.LevelStats(row.ClassID, row.Level)
	if ls != nil {
		p.SetVariable(entity.VarMaxHealth, int32(ls.MaxHealth))
		p.SetVariable(entity.VarMaxMana, int32(ls.MaxMana))
		for i, s := range ls.Stats {
			p.SetStat(i, int32(s)+int32(row.StatBonus[i]))
		}
	}
	p.FlushDirty()

	ps := &PlayerState{
		CharID:    row.CharID,
		Inventory: systems.NewInventory(),
		Bank:      systems.NewBank(),
		Equipment: systems.NewEquipment(),
		QuestLog:  systems.NewQuestLog(),
		Cooldowns: combat.NewCooldownTable(),
		Ignore:    systems.NewIgnoreList(),
		Auras:     combat.NewManager(),
	}
	ps.Inventory.LoadSlots(row.Inventory)
	ps.Bank.LoadSlots(row.Bank)
	ps.Equipment.LoadSlots(row.Equipment)
	ps.QuestLog.LoadEntries(row.QuestLog)
	ps.StatBonus = row.StatBonus

	deps.Players[p.GUID] = ps
	deps.SessionOf[p.GUID] = sess

	res := deps.World.SpawnPlayer(p)
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

	sess.SetPlayer(p, deps.clearPlayer)
	deps.Log.Info("player entered world", zap.String("name", p.Name), zap.Uint32("guid", uint32(p.GUID)))
}

// clearPlayer is installed as the session's ClearPlayerHook: it saves the
// character, despawns it from the world, and tears down its in-memory
// state, in that fixed order.
func (d *Deps) clearPlayer(guid entity.GUID) {
	p := d.Entities.Get(guid)
	ps := d.Players[guid]
	if p == nil || ps == nil {
		return
	}

	row := buildCharacterRow(p, ps)
	d.Saver.Enqueue(func() error { return d.Characters.Save(row) })

	notify := d.World.DespawnPlayer(guid)
	gone := buildEntityDisappear(guid)
	for _, viewer := range notify {
		d.sendTo(viewer, gone)
	}

	delete(d.Players, guid)
	delete(d.SessionOf, guid)
	d.Entities.Remove(guid)
}

// EnqueueAutoSave queues a background save for every in-world
// character, called periodically by the world loop.
func (d *Deps) EnqueueAutoSave() {
	for guid, ps := range d.Players {
		p := d.Entities.Get(guid)
		if p == nil {
			continue
		}
		row := buildCharacterRow(p, ps)
		d.Saver.Enqueue(func() error { return d.Characters.Save(row) })
	}
}

// SaveAllPlayers synchronously persists every currently in-world
// character, used by the shutdown drain sequence so the process does
// not exit before every save lands.
func (d *Deps) SaveAllPlayers() {
	for guid, ps := range d.Players {
		p := d.Entities.Get(guid)
		if p == nil {
			continue
		}
		row := buildCharacterRow(p, ps)
		if err := d.Characters.Save(row); err != nil {
			d.Log.Error("shutdown save failed", zap.String("name", p.Name), zap.Error(err))
		}
	}
}

func buildCharacterRow(p *entity.Entity, ps *PlayerState) *persist.CharacterRow {
	return &persist.CharacterRow{
		CharID:     ps.CharID,
		Level:      int(p.Variable(entity.VarLevel)),
		Experience: int64(p.Variable(entity.VarExperience)),
		MapID:      p.MapID,
		X:          p.X,
		Y:          p.Y,
		Health:     int(p.Variable(entity.VarHealth)),
		Mana:       int(p.Variable(entity.VarMana)),
		Gold:       int64(p.Variable(entity.VarGold)),
		Inventory:  ps.Inventory.ToSlots(),
		Bank:       ps.Bank.ToSlots(),
		Equipment:  ps.Equipment.ToSlots(),
		QuestLog:   ps.QuestLog.ToEntries(),
		StatBonus:  ps.StatBonus,
	}
}

func sendWorldEnter(sess *session.Session, p *entity.Entity) {
	w := newWriter(OpSWorldEnter)
	w.WriteUint32(uint32(p.GUID))
	w.WriteUint16(uint16(p.MapID))
	w.WriteFloat64(p.X)
	w.WriteFloat64(p.Y)
	w.WriteUint32(uint32(p.Variable(entity.VarHealth)))
	w.WriteUint32(uint32(p.Variable(entity.VarMaxHealth)))
	w.WriteUint32(uint32(p.Variable(entity.VarMana)))
	w.WriteUint32(uint32(p.Variable(entity.VarMaxMana)))
	sess.SendPacket(w.Bytes())
}

func buildEntityAppear(e *entity.Entity) []byte {
	w := newWriter(OpSEntityAppear)
	w.WriteUint32(uint32(e.GUID))
	w.WriteUint8(uint8(e.Kind))
	w.WriteString(e.Name)
	w.WriteUint16(uint16(e.MapID))
	w.WriteFloat64(e.X)
	w.WriteFloat64(e.Y)
	w.WriteBool(e.Dead)
	return w.Bytes()
}

func sendEntityAppear(sess *session.Session, e *entity.Entity) {
	sess.SendPacket(buildEntityAppear(e))
}

func buildEntityDisappear(guid entity.GUID) []byte {
	w := newWriter(OpSEntityDisappear)
	w.WriteUint32(uint32(guid))
	return w.Bytes()
}
