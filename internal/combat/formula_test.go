package combat

import "testing"

func TestDamageAppliesCritAndResistance(t *testing.T) {
	dealt, absorbed := Damage(DamageInput{
		BaseDamage:       100,
		Crit:             true,
		CritMultiplier:   2,
		ResistanceFactor: 0.5,
	})
	if dealt != 100 {
		t.Fatalf("expected 100 (100*2*0.5), got %v", dealt)
	}
	if absorbed != 0 {
		t.Fatalf("expected no absorb, got %v", absorbed)
	}
}

func TestDamageConsumesAbsorbThenArmor(t *testing.T) {
	dealt, absorbed := Damage(DamageInput{
		BaseDamage:      100,
		ResistanceFactor: 1,
		AbsorbRemaining: 30,
		Armor:           20,
		IsPhysical:      true,
	})
	if absorbed != 30 {
		t.Fatalf("expected absorb 30, got %v", absorbed)
	}
	if dealt != 50 {
		t.Fatalf("expected 100-30-20=50, got %v", dealt)
	}
}

func TestDamageClampsToZero(t *testing.T) {
	dealt, _ := Damage(DamageInput{
		BaseDamage:      10,
		ResistanceFactor: 1,
		Armor:           1000,
		IsPhysical:      true,
	})
	if dealt != 0 {
		t.Fatalf("expected clamp to 0, got %v", dealt)
	}
}

func TestHealClampsToMissingHealth(t *testing.T) {
	amount := Heal(HealInput{
		BasePayload:        100,
		HealingDealtMod:    1,
		HealingReceivedMod: 1,
		MissingHealth:      40,
	})
	if amount != 40 {
		t.Fatalf("expected clamp to missing health 40, got %v", amount)
	}
}

func TestHealCritDoublesPayload(t *testing.T) {
	amount := Heal(HealInput{
		BasePayload:        50,
		HealingDealtMod:    1,
		HealingReceivedMod: 1,
		Crit:               true,
		MissingHealth:      1000,
	})
	if amount != 100 {
		t.Fatalf("expected 100 from crit double, got %v", amount)
	}
}
