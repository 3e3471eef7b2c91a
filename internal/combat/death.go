package combat

import "github.com/dreadmyst/server/internal/entity"

// DeathKind branches the post-death path.
type DeathKind int

const (
	DeathPlayer DeathKind = iota
	DeathNPC
)

// DeathOutcome is what Die computed; the caller (world/handler layer)
// turns it into broadcasts, respawn scheduling, and loot generation.
type DeathOutcome struct {
	Victim entity.GUID
	Kind   DeathKind

	CastInterrupted bool
	AurasCleared    []*Aura
	ThreatCleared   []entity.GUID
}

// Die runs the on-death cleanup sequence for victim: cancel its pending
// cast, strip every aura except ones flagged to persist through death,
// and clear victim's entry from every attacker's threat table. kind
// selects whether the caller should await a respawn request (player) or
// schedule an automatic respawn and drop loot (NPC).
func Die(victim entity.GUID, kind DeathKind, cast *Cast, auras *Manager, attackerThreats []*ThreatTable) DeathOutcome {
	out := DeathOutcome{Victim: victim, Kind: kind}

	if cast != nil && cast.Phase != PhaseIdle {
		cast.Interrupt()
		out.CastInterrupted = true
	}

	if auras != nil {
		before := auras.All()
		auras.ClearExceptPersistent()
		after := auras.All()
		out.AurasCleared = removedAuras(before, after)
	}

	for _, tt := range attackerThreats {
		if tt.Get(victim) != 0 {
			tt.Remove(victim)
			out.ThreatCleared = append(out.ThreatCleared, victim)
		}
	}

	return out
}

func removedAuras(before, after []*Aura) []*Aura {
	stillPresent := make(map[*Aura]bool, len(after))
	for _, a := range after {
		stillPresent[a] = true
	}
	var removed []*Aura
	for _, a := range before {
		if !stillPresent[a] {
			removed = append(removed, a)
		}
	}
	return removed
}
