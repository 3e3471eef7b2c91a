package handler

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/dreadmyst/server/internal/combat"
	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
)

// MeleeRange is the default reach of an unarmed/weapon melee attack.
const MeleeRange = 4.0

// statContext adapts an entity's primary stats into combat.StatContext
// for formula evaluation, by the naming convention content authors use
// in spell_effects.formula_expr: level, stat0..stat7.
type statContext struct{ e *entity.Entity }

func (s statContext) Stat(name string) float64 {
	switch name {
	case "level":
		return float64(s.e.Variable(entity.VarLevel))
	default:
		var idx int
		if _, err := fmt.Sscanf(name, "stat%d", &idx); err == nil && idx >= 0 && idx < 8 {
			return float64(s.e.Stat(idx))
		}
	}
	return 0
}

func toCombatTargetType(t int) combat.TargetType {
	switch t {
	case 0:
		return combat.TargetSelf
	case 1:
		return combat.TargetSingleFriendly
	case 2:
		return combat.TargetSingleHostile
	case 3:
		return combat.TargetPoint
	case 4:
		return combat.TargetAreaHostile
	case 5:
		return combat.TargetAreaFriendly
	default:
		return combat.TargetSingleHostile
	}
}

// buildTemplate compiles sp's data into a castable combat.Template, with
// each effect slot's Apply closure bound to caster and deps so Cast.Resolve
// can invoke it without either package depending on the other's types.
func (d *Deps) buildTemplate(sp *content.Spell, caster *entity.Entity) *combat.Template {
	t := &combat.Template{
		SpellID:               sp.ID,
		Instant:               sp.CastTimeMillis == 0,
		CastSeconds:           float64(sp.CastTimeMillis) / 1000,
		ManaCost:              int32(sp.ManaCost),
		Category:              sp.CooldownCategory,
		CooldownSeconds:       float64(sp.CooldownSeconds),
		GCDSeconds:            float64(sp.GCDMillis) / 1000,
		RangeUnits:            sp.Range,
		IgnoresLineOfSight:    sp.IgnoresLineOfSight,
		InterruptibleByDamage: sp.InterruptibleByDamage,
		AllowDeadTarget:       sp.AllowsDeadTarget,
		RequiredTargetType:    toCombatTargetType(sp.TargetType),
	}
	for _, eff := range sp.Effects {
		eff := eff
		t.Effects = append(t.Effects, combat.EffectSlot{
			TargetType: toCombatTargetType(eff.EffectTargetType),
			Apply: func(targets []entity.GUID) {
				d.applyEffect(caster, sp.ID, eff, sp.Attributes.SameStackForAllCasters, targets)
			},
		})
	}
	return t
}

// applyEffect resolves one cast spell effect against every target. An
// effect with no duration resolves instantly (heal or damage); one with
// a duration attaches as an aura on the target instead, ticked later by
// TickAuras.
func (d *Deps) applyEffect(caster *entity.Entity, spellID int, eff content.SpellEffect, sameStackForAll bool, targets []entity.GUID) {
	prog, err := combat.Compile(eff.FormulaExpr)
	if err != nil {
		d.Log.Error("compile spell formula", zap.String("expr", eff.FormulaExpr), zap.Error(err))
		return
	}
	base, err := prog.Eval(statContext{caster})
	if err != nil {
		d.Log.Error("eval spell formula", zap.Error(err))
		return
	}

	variant := combat.AuraVariant(eff.AuraVariant)
	isHeal := variant == combat.VariantHealOverTime
	isAura := eff.DurationSeconds > 0

	for _, targetGUID := range targets {
		target := d.Entities.Get(targetGUID)
		if target == nil || (target.Dead && !isHeal) {
			continue
		}
		if isAura {
			d.auraManagerFor(targetGUID).Apply(combat.Aura{
				SpellID:                spellID,
				CasterGUID:             caster.GUID,
				Variant:                variant,
				Payload:                base,
				MaxDurationSeconds:     float64(eff.DurationSeconds),
				MaxStacks:              1,
				TickPeriodSeconds:      float64(eff.TickPeriodSeconds),
				SameStackForAllCasters: sameStackForAll,
			})
			continue
		}
		if isHeal {
			d.healTarget(target, base)
			continue
		}
		d.dealDamage(caster, target, base, false)
	}
}

func (d *Deps) healTarget(target *entity.Entity, base float64) {
	healed := combat.Heal(combat.HealInput{
		BasePayload:        base,
		HealingDealtMod:    1,
		HealingReceivedMod: 1,
		MissingHealth:      float64(target.Variable(entity.VarMaxHealth) - target.Variable(entity.VarHealth)),
	})
	newHealth := target.Variable(entity.VarHealth) + int32(healed)
	if max := target.Variable(entity.VarMaxHealth); newHealth > max {
		newHealth = max
	}
	target.SetVariable(entity.VarHealth, newHealth)
}

// TickAuras advances every entity's applied auras by dt seconds,
// resolving periodic damage-over-time/heal-over-time/mana ticks and
// dropping expired auras. Called once per tick by the world loop.
func (d *Deps) TickAuras(dt float64) {
	for guid, ps := range d.Players {
		if ps.Auras == nil {
			continue
		}
		d.tickOneAuraManager(guid, ps.Auras, dt)
	}
	for guid, m := range d.NPCAuras {
		d.tickOneAuraManager(guid, m, dt)
	}
}

func (d *Deps) tickOneAuraManager(guid entity.GUID, m *combat.Manager, dt float64) {
	target := d.Entities.Get(guid)
	if target == nil {
		return
	}
	res := m.Tick(dt)
	for _, a := range res.PeriodicFires {
		d.applyPeriodicAura(target, a)
	}
}

// applyPeriodicAura resolves one periodic tick of an already-applied
// aura: damage-over-time deals damage, heal-over-time and periodic mana
// restore the matching resource. Instantaneous variants (stun, silence,
// root, stat/model modifiers, absorb shields, proc triggers) carry no
// periodic component and are read directly off the Manager by callers
// that need them (HandleCastSpell's stun/silence gate, for instance).
func (d *Deps) applyPeriodicAura(target *entity.Entity, a *combat.Aura) {
	switch a.Variant {
	case combat.VariantDamageOverTime:
		caster := target
		if c := d.Entities.Get(a.CasterGUID); c != nil {
			caster = c
		}
		d.dealDamage(caster, target, a.Payload, false)
	case combat.VariantHealOverTime:
		d.healTarget(target, a.Payload)
	case combat.VariantPeriodicMana:
		newMana := target.Variable(entity.VarMana) + int32(a.Payload)
		if max := target.Variable(entity.VarMaxMana); newMana > max {
			newMana = max
		}
		target.SetVariable(entity.VarMana, newMana)
	}
}

// dealDamage applies a pre-rolled or formula-derived amount of damage to
// target, updates NPC threat, and runs the death sequence when health
// reaches zero.
func (d *Deps) dealDamage(attacker, target *entity.Entity, base float64, physical bool) {
	d.dealDamageRolled(attacker, target, base, physical, false)
}

func (d *Deps) dealDamageRolled(attacker, target *entity.Entity, base float64, physical, crit bool) {
	dealt, _ := combat.Damage(combat.DamageInput{
		BaseDamage:       base,
		Crit:             crit,
		CritMultiplier:   2,
		ResistanceFactor: 1,
		IsPhysical:       physical,
	})
	remaining := target.Variable(entity.VarHealth) - int32(dealt)
	if remaining < 0 {
		remaining = 0
	}
	target.SetVariable(entity.VarHealth, remaining)

	if target.Kind == entity.KindNPC {
		tt := d.NPCThreat[target.GUID]
		if tt == nil {
			tt = combat.NewThreatTable()
			d.NPCThreat[target.GUID] = tt
		}
		tt.Add(attacker.GUID, int32(dealt))
	}

	result := newWriter(OpSCombatResult)
	result.WriteUint32(uint32(attacker.GUID))
	result.WriteUint32(uint32(target.GUID))
	result.WriteUint32(uint32(dealt))
	for _, viewer := range d.World.BroadcastToVisible(target.GUID, 0) {
		d.sendTo(viewer, result.Bytes())
	}

	if remaining <= 0 && !target.Dead {
		d.killEntity(attacker, target)
	}
}

func (d *Deps) killEntity(killer, victim *entity.Entity) {
	victim.Dead = true

	kind := combat.DeathPlayer
	if victim.Kind == entity.KindNPC {
		kind = combat.DeathNPC
	}
	var cast *combat.Cast
	if ps := d.Players[victim.GUID]; ps != nil {
		cast = ps.Cast
	}
	combat.Die(victim.GUID, kind, cast, d.auraManagerFor(victim.GUID), nil)

	deathMsg := newWriter(OpSDeath)
	deathMsg.WriteUint32(uint32(victim.GUID))
	for _, viewer := range d.World.BroadcastToVisible(victim.GUID, 0) {
		d.sendTo(viewer, deathMsg.Bytes())
	}

	if victim.Kind != entity.KindNPC {
		return
	}

	tpl := d.Content.NPCs[d.npcTemplateID(victim)]
	if tpl != nil && killer.Kind == entity.KindPlayer {
		xp := systems.KillXP(int(killer.Variable(entity.VarLevel)), tpl.Level, tpl.BaseXP)
		systems.ApplyExperience(killer, d.Content, xp)
	}
	entries := d.Content.LootTables[d.npcTemplateID(victim)]
	d.NPCCorpses[victim.GUID] = systems.NewCorpse(victim.GUID, killer.GUID, entries, systems.PickupKillerOnly, d.Rng)

	notify := d.World.DespawnNPC(victim.GUID)
	gone := buildEntityDisappear(victim.GUID)
	for _, viewer := range notify {
		d.sendTo(viewer, gone)
	}
	d.World.RemoveNPC(victim.GUID)
	d.Entities.Remove(victim.GUID)
	delete(d.NPCThreat, victim.GUID)
	delete(d.NPCAuras, victim.GUID)
	if d.NPCDeathHook != nil {
		d.NPCDeathHook(victim.GUID)
	}
}

// npcTemplateID recovers the template id an NPC entity was spawned from.
// Live NPC entities carry no template back-reference, so callers that
// need it look it up by matching the entity's name against template names
// in the cache -- acceptable for the loot/XP lookups here since template names are
// unique.
func (d *Deps) npcTemplateID(npc *entity.Entity) int {
	for id, tpl := range d.Content.NPCs {
		if tpl.Name == npc.Name {
			return id
		}
	}
	return 0
}

// HandleCastSpell processes [spellID][targetGUID].
func HandleCastSpell(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	if p == nil {
		return
	}
	spellID := int(r.ReadUint32())
	targetGUID := entity.GUID(r.ReadUint32())

	ps := deps.Players[p.GUID]
	if ps == nil {
		return
	}
	sp := deps.Content.Spells[spellID]
	if sp == nil {
		sendError(sess, ErrInvalidTarget)
		return
	}
	target := deps.Entities.Get(targetGUID)

	now := time.Now()
	in := combat.ValidationInput{
		CasterAlive:    !p.Dead,
		CasterMana:     p.Variable(entity.VarMana),
		CooldownReady:  ps.Cooldowns.IsReady(spellID, sp.CooldownCategory, now),
		TargetIsSelf:   targetGUID == p.GUID,
		HasLineOfSight: true,
		CasterStunned:  ps.Auras != nil && ps.Auras.Stunned(),
		CasterSilenced: ps.Auras != nil && ps.Auras.Silenced(),
	}
	if target != nil {
		in.DistanceToTarget = p.DistanceTo(target)
		in.TargetAlive = !target.Dead
		in.TargetIsFriendly = target.Kind == entity.KindPlayer
		in.TargetIsHostile = target.Kind == entity.KindNPC
	}

	tmpl := deps.buildTemplate(sp, p)
	if err := combat.Validate(tmpl, in); err != nil {
		sendError(sess, castErrorCode(err))
		return
	}

	cast := combat.Begin(tmpl, p.GUID, targetGUID)
	ps.Cast = cast

	if cast.Phase == combat.PhaseResolving {
		deps.resolveCast(ps, p, cast)
		return
	}

	w := newWriter(OpSCastStart)
	w.WriteUint32(uint32(p.GUID))
	w.WriteUint32(uint32(spellID))
	w.WriteFloat64(tmpl.CastSeconds)
	for _, viewer := range deps.World.BroadcastToVisible(p.GUID, 0) {
		deps.sendTo(viewer, w.Bytes())
	}
}

func (d *Deps) resolveCast(ps *PlayerState, caster *entity.Entity, cast *combat.Cast) {
	cast.Resolve(
		func(manaCost int32, gcd float64) {
			caster.SetVariable(entity.VarMana, caster.Variable(entity.VarMana)-manaCost)
			ps.Cooldowns.StartGCD(time.Duration(gcd*float64(time.Second)), time.Now())
			ps.Cooldowns.StartCooldown(cast.Template.SpellID, cast.Template.Category,
				time.Duration(cast.Template.CooldownSeconds*float64(time.Second)), time.Now())
		},
		func(tt combat.TargetType) []entity.GUID {
			return d.resolveTargets(caster, tt, cast.TargetGUID)
		},
	)
	ps.Cast = nil

	w := newWriter(OpSCastStop)
	w.WriteUint32(uint32(caster.GUID))
	for _, viewer := range d.World.BroadcastToVisible(caster.GUID, 0) {
		d.sendTo(viewer, w.Bytes())
	}
}

func (d *Deps) resolveTargets(caster *entity.Entity, tt combat.TargetType, explicit entity.GUID) []entity.GUID {
	switch tt {
	case combat.TargetSelf:
		return []entity.GUID{caster.GUID}
	case combat.TargetAreaHostile, combat.TargetAreaFriendly:
		var out []entity.GUID
		for _, guid := range d.World.BroadcastToVisible(caster.GUID, 0) {
			if e := d.Entities.Get(guid); e != nil && caster.InRange(e, 20) {
				out = append(out, guid)
			}
		}
		return out
	default:
		return []entity.GUID{explicit}
	}
}

func castErrorCode(err error) ErrorCode {
	switch err {
	case combat.ErrCasterDead:
		return ErrTargetDead
	case combat.ErrNoLineOfSight:
		return ErrNoLineOfSight
	case combat.ErrOutOfRange:
		return ErrOutOfRange
	case combat.ErrInsufficientMana:
		return ErrNotEnoughMana
	case combat.ErrOnCooldown:
		return ErrOnCooldown
	case combat.ErrTargetDead:
		return ErrTargetDead
	default:
		return ErrInvalidTarget
	}
}

// HandleCancelCast processes a plain cancel request for the caller's
// own in-flight cast.
func HandleCancelCast(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	if p == nil {
		return
	}
	ps := deps.Players[p.GUID]
	if ps == nil || ps.Cast == nil || ps.Cast.Phase != combat.PhaseCasting {
		return
	}
	ps.Cast.Interrupt()
	ps.Cast = nil

	w := newWriter(OpSCastStop)
	w.WriteUint32(uint32(p.GUID))
	for _, viewer := range deps.World.BroadcastToVisible(p.GUID, 0) {
		deps.sendTo(viewer, w.Bytes())
	}
}

// HandleMeleeAttack processes [targetGUID]: a basic attack that rolls the
// hit table and applies formula-free damage of 5 plus the attacker's
// stat 0, halved on a block; the equipped weapon is not consulted.
func HandleMeleeAttack(deps *Deps, sess *session.Session, r *wire.Reader) {
	p := sess.Player()
	if p == nil || p.Dead {
		return
	}
	targetGUID := entity.GUID(r.ReadUint32())
	target := deps.Entities.Get(targetGUID)
	if target == nil || target.Dead {
		sendError(sess, ErrInvalidTarget)
		return
	}
	if !p.InRange(target, MeleeRange) {
		sendError(sess, ErrOutOfRange)
		return
	}

	result := combat.Roll(rand.New(rand.NewSource(int64(p.GUID)+time.Now().UnixNano())),
		combat.AttackerStats{WeaponSkill: float64(p.Stat(0))},
		combat.DefenderStats{DodgeRating: float64(target.Stat(1))},
		combat.Suppressed{})

	switch result {
	case combat.ResultMiss, combat.ResultDodge, combat.ResultParry:
		return
	}

	base := 5.0 + float64(p.Stat(0))
	if result == combat.ResultBlock {
		base *= 0.5
	}
	deps.dealDamageRolled(p, target, base, true, result == combat.ResultCrit)
}

// TickCasts advances every in-flight timed cast by dt seconds and
// resolves whichever ones complete this tick. Called once per tick by
// the world loop.
func (d *Deps) TickCasts(dt float64) {
	for guid, ps := range d.Players {
		if ps.Cast == nil {
			continue
		}
		if !ps.Cast.Tick(dt) {
			continue
		}
		caster := d.Entities.Get(guid)
		if caster == nil {
			ps.Cast = nil
			continue
		}
		d.resolveCast(ps, caster, ps.Cast)
	}
}
