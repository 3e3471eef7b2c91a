package combat

import (
	"testing"

	"github.com/dreadmyst/server/internal/entity"
)

func TestValidateChecksInOrder(t *testing.T) {
	tmpl := &Template{RangeUnits: 30, ManaCost: 10, RequiredTargetType: TargetSingleHostile}

	if err := Validate(tmpl, ValidationInput{}); err != ErrCasterDead {
		t.Fatalf("expected ErrCasterDead first, got %v", err)
	}

	in := ValidationInput{CasterAlive: true, CasterSilenced: true}
	if err := Validate(tmpl, in); err != ErrSilenced {
		t.Fatalf("expected ErrSilenced, got %v", err)
	}

	in = ValidationInput{CasterAlive: true, HasLineOfSight: false}
	if err := Validate(tmpl, in); err != ErrNoLineOfSight {
		t.Fatalf("expected ErrNoLineOfSight, got %v", err)
	}

	in = ValidationInput{CasterAlive: true, HasLineOfSight: true, DistanceToTarget: 100}
	if err := Validate(tmpl, in); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	in = ValidationInput{CasterAlive: true, HasLineOfSight: true, DistanceToTarget: 10, CasterMana: 0}
	if err := Validate(tmpl, in); err != ErrInsufficientMana {
		t.Fatalf("expected ErrInsufficientMana, got %v", err)
	}
}

func TestValidateRejectsDeadTargetUnlessAllowed(t *testing.T) {
	tmpl := &Template{RequiredTargetType: TargetSingleHostile}
	in := ValidationInput{
		CasterAlive:      true,
		HasLineOfSight:   true,
		CooldownReady:    true,
		TargetIsHostile:  true,
		TargetAlive:      false,
	}
	if err := Validate(tmpl, in); err != ErrTargetDead {
		t.Fatalf("expected ErrTargetDead, got %v", err)
	}

	tmpl.AllowDeadTarget = true
	if err := Validate(tmpl, in); err != nil {
		t.Fatalf("expected nil when AllowDeadTarget set, got %v", err)
	}
}

func TestValidatePasses(t *testing.T) {
	tmpl := &Template{RangeUnits: 30, ManaCost: 10, RequiredTargetType: TargetSingleHostile}
	in := ValidationInput{
		CasterAlive:      true,
		HasLineOfSight:   true,
		DistanceToTarget: 5,
		CasterMana:       50,
		CooldownReady:    true,
		TargetIsHostile:  true,
		TargetAlive:      true,
	}
	if err := Validate(tmpl, in); err != nil {
		t.Fatalf("expected valid cast, got %v", err)
	}
}

func TestBeginInstantSpellSkipsCasting(t *testing.T) {
	tmpl := &Template{Instant: true}
	c := Begin(tmpl, 1, 2)
	if c.Phase != PhaseResolving {
		t.Fatalf("expected instant spell to land in resolving, got phase %v", c.Phase)
	}
}

func TestBeginTimedSpellEntersCasting(t *testing.T) {
	tmpl := &Template{CastSeconds: 2}
	c := Begin(tmpl, 1, 2)
	if c.Phase != PhaseCasting {
		t.Fatalf("expected timed spell to enter casting, got %v", c.Phase)
	}
}

func TestTickTransitionsToResolving(t *testing.T) {
	tmpl := &Template{CastSeconds: 2}
	c := Begin(tmpl, 1, 2)

	if c.Tick(1) {
		t.Fatalf("expected cast bar not finished after 1s of 2s")
	}
	if !c.Tick(1.5) {
		t.Fatalf("expected cast bar finished after total 2.5s")
	}
	if c.Phase != PhaseResolving {
		t.Fatalf("expected resolving phase, got %v", c.Phase)
	}
}

func TestInterruptReturnsToIdle(t *testing.T) {
	tmpl := &Template{CastSeconds: 2}
	c := Begin(tmpl, 1, 2)
	c.Interrupt()
	if c.Phase != PhaseIdle {
		t.Fatalf("expected idle after interrupt, got %v", c.Phase)
	}
}

func TestResolveRunsEffectSlotsAgainstComputedTargets(t *testing.T) {
	var appliedTo []entity.GUID
	var consumedMana int32
	var consumedGCD float64

	tmpl := &Template{
		ManaCost:   10,
		GCDSeconds: 1.5,
		Effects: []EffectSlot{
			{TargetType: TargetSingleHostile, Apply: func(targets []entity.GUID) {
				appliedTo = append(appliedTo, targets...)
			}},
		},
	}
	c := Begin(tmpl, 1, 2)

	c.Resolve(
		func(manaCost int32, gcd float64) { consumedMana, consumedGCD = manaCost, gcd },
		func(tt TargetType) []entity.GUID {
			if tt == TargetSingleHostile {
				return []entity.GUID{2}
			}
			return nil
		},
	)

	if consumedMana != 10 || consumedGCD != 1.5 {
		t.Fatalf("expected mana/gcd consumed, got %d/%v", consumedMana, consumedGCD)
	}
	if len(appliedTo) != 1 || appliedTo[0] != 2 {
		t.Fatalf("expected effect applied to target 2, got %v", appliedTo)
	}
	if c.Phase != PhaseIdle {
		t.Fatalf("expected idle after resolve, got %v", c.Phase)
	}
}
