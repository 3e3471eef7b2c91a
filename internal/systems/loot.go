package systems

import (
	"math/rand"

	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
)

// PickupPolicy restricts who may loot a corpse container.
type PickupPolicy int

const (
	PickupKillerOnly PickupPolicy = iota
	PickupKillerParty
	PickupAnyone
)

// LootDrop is one rolled-in item sitting in a corpse container.
type LootDrop struct {
	ItemID int
	Count  int
}

// Corpse is the loot container spawned on an NPC's death.
type Corpse struct {
	NPCGUID entity.GUID
	Killer  entity.GUID
	Policy  PickupPolicy
	Drops   []LootDrop
}

// PartyLookup resolves a player's current party membership. Injected
// because party is out of this module's scope —
// callers without a party system supply a lookup that always returns nil.
type PartyLookup func(entity.GUID) []entity.GUID

// RollLoot evaluates every entry in the NPC template's loot table by an
// independent weighted chance (each entry's Weight is a probability in
// [0,1], not a relative weight among entries, matching the source
// Weight column's documented unit), returning the drops that hit.
func RollLoot(entries []content.LootEntry, rng *rand.Rand) []LootDrop {
	var drops []LootDrop
	for _, e := range entries {
		if rng.Float64() >= e.Weight {
			continue
		}
		qty := e.MinQty
		if e.MaxQty > e.MinQty {
			qty += rng.Intn(e.MaxQty - e.MinQty + 1)
		}
		if qty <= 0 {
			continue
		}
		drops = append(drops, LootDrop{ItemID: e.ItemID, Count: qty})
	}
	return drops
}

// NewCorpse rolls loot and builds the container for a killed NPC.
func NewCorpse(npcGUID, killer entity.GUID, entries []content.LootEntry, policy PickupPolicy, rng *rand.Rand) *Corpse {
	return &Corpse{NPCGUID: npcGUID, Killer: killer, Policy: policy, Drops: RollLoot(entries, rng)}
}

// CanLoot reports whether looter may take from c, per its pickup policy.
func CanLoot(c *Corpse, looter entity.GUID, partyOf PartyLookup) bool {
	switch c.Policy {
	case PickupAnyone:
		return true
	case PickupKillerOnly:
		return looter == c.Killer
	case PickupKillerParty:
		if looter == c.Killer {
			return true
		}
		if partyOf == nil {
			return false
		}
		for _, m := range partyOf(c.Killer) {
			if m == looter {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Take removes itemID from the corpse (fully — partial stacks are not
// split on pickup) and returns how many were taken, 0 if absent.
func Take(c *Corpse, itemID int) int {
	for i, d := range c.Drops {
		if d.ItemID == itemID {
			c.Drops = append(c.Drops[:i], c.Drops[i+1:]...)
			return d.Count
		}
	}
	return 0
}

func (c *Corpse) IsEmpty() bool { return len(c.Drops) == 0 }
