package combat

import (
	"errors"

	"github.com/dreadmyst/server/internal/entity"
)

// CastPhase is a cast's position in the idle/validating/casting/resolving
// cycle. Instant spells move validating -> resolving directly,
// never entering casting.
type CastPhase int

const (
	PhaseIdle CastPhase = iota
	PhaseValidating
	PhaseCasting
	PhaseResolving
)

// TargetType selects how an effect slot's target set is computed.
type TargetType int

const (
	TargetSelf TargetType = iota
	TargetSingleFriendly
	TargetSingleHostile
	TargetPoint
	TargetAreaHostile
	TargetAreaFriendly
)

// EffectSlot is one of a spell template's up to three effects.
type EffectSlot struct {
	TargetType TargetType
	Apply      func(targets []entity.GUID)
}

// Template is the static, data-driven definition of a castable spell.
type Template struct {
	SpellID            int
	Instant            bool
	CastSeconds        float64
	ManaCost           int32
	Category           int
	CooldownSeconds    float64
	GCDSeconds         float64
	RangeUnits         float64
	IgnoresLineOfSight bool
	InterruptibleByDamage bool
	AllowDeadTarget    bool
	RequiredTargetType TargetType
	Effects            []EffectSlot
}

var (
	ErrCasterDead        = errors.New("caster is dead")
	ErrSilenced          = errors.New("caster is silenced")
	ErrStunned           = errors.New("caster is stunned")
	ErrNoLineOfSight     = errors.New("no line of sight to target")
	ErrOutOfRange        = errors.New("target out of range")
	ErrInsufficientMana  = errors.New("insufficient mana")
	ErrOnCooldown        = errors.New("spell on cooldown")
	ErrInvalidTarget     = errors.New("invalid target for spell")
	ErrTargetDead        = errors.New("target is dead")
)

// ValidationInput bundles every fact Validate needs without depending on
// the entity/world packages' concrete types.
type ValidationInput struct {
	CasterAlive     bool
	CasterSilenced  bool
	CasterStunned   bool
	CasterMana      int32
	HasLineOfSight  bool
	DistanceToTarget float64
	TargetIsSelf    bool
	TargetIsFriendly bool
	TargetIsHostile  bool
	TargetIsGround   bool
	TargetAlive     bool
	CooldownReady   bool
}

// Validate runs every check in validating phase, in order,
// returning the first failure.
func Validate(t *Template, in ValidationInput) error {
	if !in.CasterAlive {
		return ErrCasterDead
	}
	if in.CasterSilenced {
		return ErrSilenced
	}
	if in.CasterStunned {
		return ErrStunned
	}
	if !t.IgnoresLineOfSight && !in.HasLineOfSight {
		return ErrNoLineOfSight
	}
	if t.RangeUnits > 0 && in.DistanceToTarget > t.RangeUnits {
		return ErrOutOfRange
	}
	if in.CasterMana < t.ManaCost {
		return ErrInsufficientMana
	}
	if !in.CooldownReady {
		return ErrOnCooldown
	}
	switch t.RequiredTargetType {
	case TargetSelf:
		if !in.TargetIsSelf {
			return ErrInvalidTarget
		}
	case TargetSingleFriendly, TargetAreaFriendly:
		if !in.TargetIsFriendly {
			return ErrInvalidTarget
		}
	case TargetSingleHostile, TargetAreaHostile:
		if !in.TargetIsHostile {
			return ErrInvalidTarget
		}
	case TargetPoint:
		if !in.TargetIsGround {
			return ErrInvalidTarget
		}
	}
	if !t.AllowDeadTarget && !in.TargetAlive && t.RequiredTargetType != TargetPoint && t.RequiredTargetType != TargetSelf {
		return ErrTargetDead
	}
	return nil
}

// Cast tracks one in-flight spell cast for a single caster.
type Cast struct {
	Template   *Template
	CasterGUID entity.GUID
	TargetGUID entity.GUID

	Phase            CastPhase
	RemainingSeconds float64
}

// Begin starts a new cast already past validation. Instant spells land in
// PhaseResolving immediately; timed spells enter PhaseCasting.
func Begin(t *Template, caster, target entity.GUID) *Cast {
	c := &Cast{Template: t, CasterGUID: caster, TargetGUID: target}
	if t.Instant {
		c.Phase = PhaseResolving
		return c
	}
	c.Phase = PhaseCasting
	c.RemainingSeconds = t.CastSeconds
	return c
}

// Tick advances a casting spell's timer. It returns true once the cast
// bar has finished and the cast should move to resolving.
func (c *Cast) Tick(dt float64) bool {
	if c.Phase != PhaseCasting {
		return false
	}
	c.RemainingSeconds -= dt
	if c.RemainingSeconds <= 0 {
		c.Phase = PhaseResolving
		return true
	}
	return false
}

// Interrupt cancels a casting spell due to movement, interruptible
// damage, explicit cancel, or the target dying mid-cast. The caller is
// responsible for emitting the cast-stop broadcast.
func (c *Cast) Interrupt() {
	c.Phase = PhaseIdle
}

// EffectResult is what computing one effect slot against one target
// produced, for the caller to turn into damage/heal application and
// broadcast packets.
type EffectResult struct {
	Target entity.GUID
}

// Resolve consumes mana and the GCD (via the supplied callback, so this
// package need not hold a reference to the caster's mana pool or
// cooldown table) and runs every effect slot's Apply against the target
// set computeTargets returns for that slot's TargetType.
func (c *Cast) Resolve(consume func(manaCost int32, gcd float64), computeTargets func(TargetType) []entity.GUID) {
	t := c.Template
	consume(t.ManaCost, t.GCDSeconds)
	for _, slot := range t.Effects {
		targets := computeTargets(slot.TargetType)
		if slot.Apply != nil {
			slot.Apply(targets)
		}
	}
	c.Phase = PhaseIdle
}
