package world

import (
	"testing"

	"github.com/dreadmyst/server/internal/entity"
)

func newPlayer(guid entity.GUID, mapID int, x, y float64) *entity.Entity {
	e := entity.New(guid, entity.KindPlayer, "p")
	e.MapID, e.X, e.Y = mapID, x, y
	return e
}

func TestSpawnPlayerUnboundedViewSeesExistingAndIsSeen(t *testing.T) {
	r := NewRegistry(0)
	a := newPlayer(1, 1, 0, 0)
	r.SpawnPlayer(a)

	b := newPlayer(2, 1, 100, 100)
	res := r.SpawnPlayer(b)

	if len(res.NotifyOthers) != 1 || res.NotifyOthers[0] != 1 {
		t.Fatalf("expected player a notified of b's arrival, got %v", res.NotifyOthers)
	}
	if len(res.VisibleToNew) != 1 || res.VisibleToNew[0].GUID != 1 {
		t.Fatalf("expected b to see a on spawn, got %v", res.VisibleToNew)
	}
}

func TestSpawnPlayerDifferentMapsNotVisible(t *testing.T) {
	r := NewRegistry(0)
	a := newPlayer(1, 1, 0, 0)
	r.SpawnPlayer(a)

	b := newPlayer(2, 2, 0, 0)
	res := r.SpawnPlayer(b)

	if len(res.NotifyOthers) != 0 || len(res.VisibleToNew) != 0 {
		t.Fatalf("expected no cross-map visibility, got %+v", res)
	}
}

func TestDespawnPlayerNotifiesViewers(t *testing.T) {
	r := NewRegistry(0)
	a := newPlayer(1, 1, 0, 0)
	b := newPlayer(2, 1, 0, 0)
	r.SpawnPlayer(a)
	r.SpawnPlayer(b)

	notify := r.DespawnPlayer(b.GUID)
	if len(notify) != 1 || notify[0] != 1 {
		t.Fatalf("expected a notified of b's despawn, got %v", notify)
	}
	if r.GetPlayer(b.GUID) != nil {
		t.Fatalf("expected b removed from registry")
	}
}

func TestChangePlayerMapMovesBetweenMaps(t *testing.T) {
	r := NewRegistry(0)
	a := newPlayer(1, 1, 0, 0)
	b := newPlayer(2, 1, 0, 0)
	r.SpawnPlayer(a)
	r.SpawnPlayer(b)

	despawnNotify, spawnRes := r.ChangePlayerMap(b, 2, 5, 5)
	if len(despawnNotify) != 1 || despawnNotify[0] != 1 {
		t.Fatalf("expected old-map despawn notify to a, got %v", despawnNotify)
	}
	if len(spawnRes.NotifyOthers) != 0 {
		t.Fatalf("expected no notify on empty destination map, got %v", spawnRes.NotifyOthers)
	}
	if b.MapID != 2 || b.X != 5 || b.Y != 5 {
		t.Fatalf("expected b's position updated, got map=%d x=%v y=%v", b.MapID, b.X, b.Y)
	}
}

func TestBoundedViewDistanceHysteresis(t *testing.T) {
	r := NewRegistry(10)
	a := newPlayer(1, 1, 0, 0)
	b := newPlayer(2, 1, 9, 0)
	r.SpawnPlayer(a)
	r.SpawnPlayer(b)

	// b is within enter radius (10+2=12) of a, so a should already see b.
	deltaA := r.UpdateVisibility(a)
	_ = deltaA

	// Move b out past enter radius but within leave radius (10+4=14):
	// hysteresis should keep it visible instead of immediately dropping.
	b.X = 13
	delta := r.OnPlayerMoved(b, 9, 0)
	_ = delta

	deltaA2 := r.UpdateVisibility(a)
	for _, gone := range deltaA2.Disappeared {
		if gone == b.GUID {
			t.Fatalf("expected hysteresis to keep b visible within leave radius")
		}
	}
}

func TestBoundedViewDistanceDropsBeyondLeaveRadius(t *testing.T) {
	r := NewRegistry(10)
	a := newPlayer(1, 1, 0, 0)
	b := newPlayer(2, 1, 9, 0)
	r.SpawnPlayer(a)
	r.SpawnPlayer(b)
	r.UpdateVisibility(a)

	b.X = 100
	r.OnPlayerMoved(b, 9, 0)
	delta := r.UpdateVisibility(a)

	found := false
	for _, gone := range delta.Disappeared {
		if gone == b.GUID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected b to disappear once beyond leave radius")
	}
}

func TestSpawnAndDespawnNPC(t *testing.T) {
	r := NewRegistry(0)
	n := newPlayer(100, 1, 0, 0)
	n.Kind = entity.KindNPC
	r.SpawnNPC(n)

	if r.GetNPC(100) == nil {
		t.Fatalf("expected NPC registered")
	}
	if len(r.NPCsOnMap(1)) != 1 {
		t.Fatalf("expected one NPC on map 1")
	}

	r.RemoveNPC(100)
	if r.GetNPC(100) != nil {
		t.Fatalf("expected NPC removed")
	}
}

func TestBroadcastToMapExcludesGiven(t *testing.T) {
	r := NewRegistry(0)
	a := newPlayer(1, 1, 0, 0)
	b := newPlayer(2, 1, 0, 0)
	r.SpawnPlayer(a)
	r.SpawnPlayer(b)

	targets := r.BroadcastToMap(1, a.GUID)
	if len(targets) != 1 || targets[0] != 2 {
		t.Fatalf("expected only b as broadcast target, got %v", targets)
	}
}

func TestBroadcastGlobalExcludesGiven(t *testing.T) {
	r := NewRegistry(0)
	a := newPlayer(1, 1, 0, 0)
	b := newPlayer(2, 2, 0, 0)
	r.SpawnPlayer(a)
	r.SpawnPlayer(b)

	targets := r.BroadcastGlobal(a.GUID)
	if len(targets) != 1 || targets[0] != 2 {
		t.Fatalf("expected only b in global broadcast, got %v", targets)
	}
}
