package combat

// DamageInput bundles everything the damage formula needs beyond the
// compiled base-damage Program.
type DamageInput struct {
	BaseDamage       float64
	Crit             bool
	CritMultiplier   float64
	ResistanceFactor float64 // school resistance, 1.0 = no resist
	AbsorbRemaining  float64
	Armor            float64 // flat armor, physical school only
	IsPhysical       bool
}

// Damage computes final damage: base * crit multiplier *
// resistance factor, minus absorb-shield consumption, minus flat armor
// for physical school, clamped to >= 0. It also returns the absorb
// actually consumed so the caller can decrement the shield.
func Damage(in DamageInput) (dealt float64, absorbed float64) {
	amount := in.BaseDamage
	if in.Crit {
		amount *= in.CritMultiplier
	}
	amount *= in.ResistanceFactor

	if in.AbsorbRemaining > 0 {
		absorbed = min(amount, in.AbsorbRemaining)
		amount -= absorbed
	}

	if in.IsPhysical {
		amount -= in.Armor
	}

	if amount < 0 {
		amount = 0
	}
	return amount, absorbed
}

// HealInput bundles the inputs to the heal formula.
type HealInput struct {
	BasePayload       float64
	HealingDealtMod    float64 // caster's healing-dealt modifier, 1.0 = no change
	HealingReceivedMod float64 // target's healing-received modifier
	Crit               bool
	MissingHealth      float64
}

// Heal computes final healing: payload scaled by caster
// and target modifiers, doubled on crit, clamped to the target's
// missing health.
func Heal(in HealInput) float64 {
	amount := in.BasePayload * in.HealingDealtMod * in.HealingReceivedMod
	if in.Crit {
		amount *= 2
	}
	if amount > in.MissingHealth {
		amount = in.MissingHealth
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
