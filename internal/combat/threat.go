package combat

import "github.com/dreadmyst/server/internal/entity"

// ThreatTable is an NPC's source-guid -> integer score map, grounded on
// original_source's ThreatManager (add/modify/remove/highest/clear).
type ThreatTable struct {
	scores map[entity.GUID]int32
}

func NewThreatTable() *ThreatTable {
	return &ThreatTable{scores: make(map[entity.GUID]int32)}
}

func (t *ThreatTable) Add(source entity.GUID, amount int32) {
	t.scores[source] += amount
}

func (t *ThreatTable) Set(source entity.GUID, amount int32) {
	t.scores[source] = amount
}

func (t *ThreatTable) Remove(source entity.GUID) {
	delete(t.scores, source)
}

func (t *ThreatTable) Get(source entity.GUID) int32 {
	return t.scores[source]
}

func (t *ThreatTable) Clear() {
	t.scores = make(map[entity.GUID]int32)
}

// Highest returns the highest-threat live source, with dead or <=0
// sources skipped and ties broken by the lower GUID. isAlive lets the
// caller supply liveness without this package depending on the world
// registry.
func (t *ThreatTable) Highest(isAlive func(entity.GUID) bool) (entity.GUID, bool) {
	var best entity.GUID
	var bestScore int32
	found := false
	for guid, score := range t.scores {
		if score <= 0 || !isAlive(guid) {
			continue
		}
		if !found || score > bestScore || (score == bestScore && guid < best) {
			best, bestScore, found = guid, score, true
		}
	}
	return best, found
}
