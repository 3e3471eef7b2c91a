package systems

import (
	"testing"

	"github.com/dreadmyst/server/internal/content"
)

func TestBuildGossipIncludesMenuStockAndOffers(t *testing.T) {
	cache := testQuestCache()
	cache.Gossip = map[int]*content.GossipMenu{50: {TextID: 900, Options: []string{"Trade"}}}
	cache.VendorStock = map[int][]content.VendorItem{50: {{ItemID: 2001, Price: 10}}}
	log := NewQuestLog()

	msg := BuildGossip(cache, log, 10, 50)
	if msg.TextID != 900 || len(msg.Options) != 1 {
		t.Fatalf("menu text/options not populated: %+v", msg)
	}
	if len(msg.Stock) != 1 {
		t.Fatalf("vendor stock not populated: %+v", msg.Stock)
	}
	if len(msg.Offers) != 1 || msg.Offers[0] != 1 {
		t.Fatalf("quest offer not populated: %+v", msg.Offers)
	}
	if msg.Status != GossipQuestAvailable {
		t.Fatalf("status = %v, want GossipQuestAvailable", msg.Status)
	}
}

func TestBuildGossipStatusQuestComplete(t *testing.T) {
	cache := testQuestCache()
	log := NewQuestLog()
	Accept(cache, log, 10, 1)
	AdvanceOnKill(cache, log, 50)
	AdvanceOnKill(cache, log, 50)
	AdvanceOnKill(cache, log, 50)

	msg := BuildGossip(cache, log, 10, 50)
	if msg.Status != GossipQuestComplete {
		t.Fatalf("status = %v, want GossipQuestComplete", msg.Status)
	}
	if len(msg.TurnIns) != 1 {
		t.Fatalf("expected 1 turn-in, got %v", msg.TurnIns)
	}
}

func TestBuildGossipStatusNoneWhenNpcHasNothing(t *testing.T) {
	cache := &content.Cache{Quests: map[int]*content.Quest{}}
	log := NewQuestLog()
	msg := BuildGossip(cache, log, 10, 999)
	if msg.Status != GossipNone {
		t.Fatalf("status = %v, want GossipNone", msg.Status)
	}
}
