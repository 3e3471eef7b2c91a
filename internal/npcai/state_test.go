package npcai

import (
	"testing"

	"github.com/dreadmyst/server/internal/entity"
)

func newTestNPC() *entity.Entity {
	e := entity.New(entity.GUID(1), entity.KindNPC, "goblin")
	e.X, e.Y = 0, 0
	e.SetVariable(entity.VarMaxHealth, 100)
	e.SetVariable(entity.VarHealth, 100)
	return e
}

func TestIdleTransitionsToChasingOnAggro(t *testing.T) {
	npc := newTestNPC()
	tmpl := &Template{AggroRadius: 10, LeashDistance: 20, MeleeRange: 1, AttackCooldownSeconds: 1}
	c := NewController(npc, tmpl, 0, 0)

	hostile := entity.GUID(2)
	w := World{
		NearestHostile: func(*entity.Entity, float64) (entity.GUID, bool) { return hostile, true },
		EntityByGUID:   func(entity.GUID) *entity.Entity { return nil },
	}

	c.Tick(1, w, nil)

	if c.State != StateChasing {
		t.Fatalf("expected chasing after aggro, got %s", c.State)
	}
	if c.Threat.Get(hostile) == 0 {
		t.Fatalf("expected initial threat recorded against aggro target")
	}
}

func TestChasingEntersCombatWithinMeleeRange(t *testing.T) {
	npc := newTestNPC()
	tmpl := &Template{LeashDistance: 20, MeleeRange: 5, AttackCooldownSeconds: 1}
	c := NewController(npc, tmpl, 0, 0)
	c.State = StateChasing

	target := entity.New(entity.GUID(2), entity.KindPlayer, "hero")
	target.X, target.Y = 3, 0
	c.Threat.Set(target.GUID, 10)

	w := World{EntityByGUID: func(g entity.GUID) *entity.Entity {
		if g == target.GUID {
			return target
		}
		return nil
	}}

	c.Tick(1, w, nil)

	if c.State != StateCombat {
		t.Fatalf("expected combat within melee range, got %s", c.State)
	}
}

func TestCombatLeashesBackToEvadingBeyondLeashDistance(t *testing.T) {
	npc := newTestNPC()
	npc.X, npc.Y = 25, 0
	tmpl := &Template{LeashDistance: 20, MeleeRange: 5, AttackCooldownSeconds: 1}
	c := NewController(npc, tmpl, 0, 0)
	c.State = StateCombat

	target := entity.New(entity.GUID(2), entity.KindPlayer, "hero")
	target.X, target.Y = 26, 0
	c.Threat.Set(target.GUID, 10)

	w := World{EntityByGUID: func(g entity.GUID) *entity.Entity {
		if g == target.GUID {
			return target
		}
		return nil
	}}

	c.Tick(1, w, nil)

	if c.State != StateEvading {
		t.Fatalf("expected evading beyond leash distance, got %s", c.State)
	}
}

func TestEvadingRestoresHealthOnArrivalAtSpawn(t *testing.T) {
	npc := newTestNPC()
	npc.SetVariable(entity.VarHealth, 10)
	npc.X, npc.Y = 0.1, 0
	tmpl := &Template{LeashDistance: 20, MeleeRange: 5}
	c := NewController(npc, tmpl, 0, 0)
	c.State = StateEvading

	c.Tick(1, World{}, nil)

	if c.State != StateIdle {
		t.Fatalf("expected idle after reaching spawn, got %s", c.State)
	}
	if npc.Variable(entity.VarHealth) != npc.Variable(entity.VarMaxHealth) {
		t.Fatalf("expected health restored to max on evade-arrival")
	}
}

func TestCombatAttacksOnCooldownAndClearsThreatOnKill(t *testing.T) {
	npc := newTestNPC()
	tmpl := &Template{LeashDistance: 20, MeleeRange: 5, AttackCooldownSeconds: 2}
	c := NewController(npc, tmpl, 0, 0)
	c.State = StateCombat

	target := entity.New(entity.GUID(2), entity.KindPlayer, "hero")
	target.X, target.Y = 1, 0
	c.Threat.Set(target.GUID, 10)

	w := World{EntityByGUID: func(g entity.GUID) *entity.Entity {
		if g == target.GUID {
			return target
		}
		return nil
	}}

	attacked := 0
	attack := func(npcE, targetE *entity.Entity) bool {
		attacked++
		return true
	}

	c.Tick(1, w, attack)
	if attacked != 1 {
		t.Fatalf("expected one attack, got %d", attacked)
	}
	if c.Threat.Get(target.GUID) != 0 {
		t.Fatalf("expected threat cleared on kill")
	}

	c.Threat.Set(target.GUID, 10)
	c.Tick(1, w, attack)
	if attacked != 1 {
		t.Fatalf("expected attack cooldown to suppress second attack, got %d attacks", attacked)
	}
}

func TestMarkDeadStopsFurtherTicks(t *testing.T) {
	npc := newTestNPC()
	tmpl := &Template{}
	c := NewController(npc, tmpl, 0, 0)
	c.Threat.Set(entity.GUID(2), 5)

	c.MarkDead()

	if c.State != StateDead {
		t.Fatalf("expected dead state")
	}
	if c.Threat.Get(2) != 0 {
		t.Fatalf("expected threat cleared on death")
	}

	c.Tick(1, World{}, nil)
	if c.State != StateDead {
		t.Fatalf("expected dead controller to ignore further ticks")
	}
}
