package combat

import "github.com/dreadmyst/server/internal/entity"

// AuraVariant distinguishes the effect an Aura applies.
type AuraVariant int

const (
	VariantStatModifier AuraVariant = iota
	VariantDamageOverTime
	VariantHealOverTime
	VariantPeriodicMana
	VariantStun
	VariantSilence
	VariantRoot
	VariantModelSpeed
	VariantAbsorbShield
	VariantProcTrigger
)

// Aura is a timed effect applied to an entity.
type Aura struct {
	SpellID    int
	CasterGUID entity.GUID
	Variant    AuraVariant
	Payload    float64 // magnitude: stat delta, DoT/HoT tick amount, absorb pool, ...

	RemainingSeconds float64
	MaxDurationSeconds float64
	Stacks           int
	MaxStacks        int

	TickPeriodSeconds float64
	NextTickRemaining float64

	SameStackForAllCasters bool
	PersistsThroughDeath   bool
}

// auraKey identifies a stacking slot: (spell id, caster guid) unless the
// aura is caster-agnostic, in which case the caster is ignored.
type auraKey struct {
	spellID    int
	casterGUID entity.GUID
}

// Manager owns every aura applied to one target entity.
type Manager struct {
	auras map[auraKey]*Aura
}

func NewManager() *Manager {
	return &Manager{auras: make(map[auraKey]*Aura)}
}

func (m *Manager) key(spellID int, caster entity.GUID, sameStackForAll bool) auraKey {
	if sameStackForAll {
		return auraKey{spellID: spellID}
	}
	return auraKey{spellID: spellID, casterGUID: caster}
}

// Apply instantiates or refreshes an aura. On an existing matching slot,
// duration resets and stacks increment up to the cap.
func (m *Manager) Apply(a Aura) {
	k := m.key(a.SpellID, a.CasterGUID, a.SameStackForAllCasters)
	if existing, ok := m.auras[k]; ok {
		existing.RemainingSeconds = a.MaxDurationSeconds
		if existing.Stacks < existing.MaxStacks {
			existing.Stacks++
		}
		existing.NextTickRemaining = a.TickPeriodSeconds
		return
	}
	a.RemainingSeconds = a.MaxDurationSeconds
	if a.Stacks == 0 {
		a.Stacks = 1
	}
	a.NextTickRemaining = a.TickPeriodSeconds
	cp := a
	m.auras[k] = &cp
}

// Cancel removes spellID cast by caster (or the caster-agnostic slot).
func (m *Manager) Cancel(spellID int, caster entity.GUID, sameStackForAll bool) {
	delete(m.auras, m.key(spellID, caster, sameStackForAll))
}

// ClearExceptPersistent removes every aura not flagged
// persists-through-death, for on-death cleanup.
func (m *Manager) ClearExceptPersistent() {
	for k, a := range m.auras {
		if !a.PersistsThroughDeath {
			delete(m.auras, k)
		}
	}
}

func (m *Manager) Has(spellID int) bool {
	for k := range m.auras {
		if k.spellID == spellID {
			return true
		}
	}
	return false
}

func (m *Manager) HasVariant(v AuraVariant) bool {
	for _, a := range m.auras {
		if a.Variant == v {
			return true
		}
	}
	return false
}

func (m *Manager) Stunned() bool  { return m.HasVariant(VariantStun) }
func (m *Manager) Silenced() bool { return m.HasVariant(VariantSilence) }
func (m *Manager) Rooted() bool   { return m.HasVariant(VariantRoot) }

// TickResult carries the periodic sub-effects and expirations produced
// by one Tick call.
type TickResult struct {
	PeriodicFires []*Aura // auras whose tick-period elapsed this tick
	Expired       []*Aura
}

// Tick advances every aura by dt seconds. Periodic variants fire before
// expiration is applied in the same tick ("tick-then-expire", per the
// Open Question decision), so an aura reaching zero remaining still
// produces its final periodic effect if its tick boundary also falls on
// this update.
func (m *Manager) Tick(dt float64) TickResult {
	var res TickResult
	for k, a := range m.auras {
		if a.TickPeriodSeconds > 0 {
			a.NextTickRemaining -= dt
			for a.NextTickRemaining <= 0 {
				res.PeriodicFires = append(res.PeriodicFires, a)
				a.NextTickRemaining += a.TickPeriodSeconds
			}
		}
		a.RemainingSeconds -= dt
		if a.RemainingSeconds <= 0 {
			res.Expired = append(res.Expired, a)
			delete(m.auras, k)
		}
	}
	return res
}

// All returns every currently applied aura; callers must not mutate the
// returned slice's backing auras outside the manager.
func (m *Manager) All() []*Aura {
	out := make([]*Aura, 0, len(m.auras))
	for _, a := range m.auras {
		out = append(out, a)
	}
	return out
}
