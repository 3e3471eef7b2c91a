package npcai

import (
	"testing"

	"github.com/dreadmyst/server/internal/entity"
)

func testFactory(nextGUID *uint32) Factory {
	return func(row SpawnRow) (*entity.Entity, *Controller) {
		*nextGUID++
		e := entity.New(entity.GUID(*nextGUID), entity.KindNPC, "mob")
		e.X, e.Y = row.X, row.Y
		ctrl := NewController(e, &Template{LeashDistance: 20, MeleeRange: 2, AttackCooldownSeconds: 1}, row.X, row.Y)
		return e, ctrl
	}
}

func TestSpawnAllInstantiatesEveryRowOnce(t *testing.T) {
	var next uint32
	rows := []SpawnRow{
		{SpawnID: 1, X: 0, Y: 0},
		{SpawnID: 2, X: 5, Y: 5},
	}
	s := NewSpawner(1, rows, testFactory(&next))

	spawned := s.SpawnAll()
	if len(spawned) != 2 {
		t.Fatalf("expected 2 spawned, got %d", len(spawned))
	}
	if len(s.Live()) != 2 {
		t.Fatalf("expected 2 live, got %d", len(s.Live()))
	}

	spawnedAgain := s.SpawnAll()
	if len(spawnedAgain) != 0 {
		t.Fatalf("expected no re-spawn for already-live rows, got %d", len(spawnedAgain))
	}
}

func TestNotifyDeathStartsRespawnTimer(t *testing.T) {
	var next uint32
	rows := []SpawnRow{{SpawnID: 1, X: 0, Y: 0, RespawnSeconds: 10}}
	s := NewSpawner(1, rows, testFactory(&next))
	s.SpawnAll()

	s.NotifyDeath(1)

	if len(s.Live()) != 0 {
		t.Fatalf("expected no live controllers after death")
	}
	if got := s.Tick(9); len(got) != 0 {
		t.Fatalf("expected no respawn before timer expires, got %d", len(got))
	}
	if got := s.Tick(1); len(got) != 1 {
		t.Fatalf("expected respawn at timer expiry, got %d", len(got))
	}
}

func TestNotifyDeathCascadesToLinkedRespawnGroupMembers(t *testing.T) {
	var next uint32
	rows := []SpawnRow{
		{SpawnID: 1, LinkedGroupID: 100, LinkedRespawn: true, RespawnSeconds: 5},
		{SpawnID: 2, LinkedGroupID: 100, LinkedRespawn: true, RespawnSeconds: 5},
		{SpawnID: 3, LinkedGroupID: 100, LinkedRespawn: false, RespawnSeconds: 5},
	}
	s := NewSpawner(1, rows, testFactory(&next))
	s.SpawnAll()

	s.NotifyDeath(1)

	if len(s.Live()) != 1 {
		t.Fatalf("expected spawn 3 (non-linked-respawn) to remain live, got %d live", len(s.Live()))
	}

	respawned := s.Tick(5)
	if len(respawned) != 2 {
		t.Fatalf("expected spawns 1 and 2 to respawn together, got %d", len(respawned))
	}
}
