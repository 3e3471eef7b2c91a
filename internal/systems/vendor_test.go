package systems

import (
	"testing"

	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
)

func testCacheWithVendor() *content.Cache {
	return &content.Cache{
		Items: map[int]*content.Item{
			1001: {ID: 1001, Name: "Short Sword", MaxStack: 1},
		},
		VendorStock: map[int][]content.VendorItem{
			50: {{ItemID: 1001, Price: 25}},
		},
	}
}

func TestBuyChargesGoldAndAddsItem(t *testing.T) {
	cache := testCacheWithVendor()
	player := newTestPlayer()
	player.SetVariable(entity.VarGold, 100)
	inv := NewInventory()

	ok, err := Buy(cache, player, inv, 50, 1001, 2)
	if !ok || err != nil {
		t.Fatalf("Buy: ok=%v err=%v", ok, err)
	}
	if player.Variable(entity.VarGold) != 50 {
		t.Fatalf("gold = %d, want 50", player.Variable(entity.VarGold))
	}
	if inv.CountOf(1001) != 2 {
		t.Fatalf("inventory count = %d, want 2", inv.CountOf(1001))
	}
}

func TestBuyFailsOnInsufficientGold(t *testing.T) {
	cache := testCacheWithVendor()
	player := newTestPlayer()
	player.SetVariable(entity.VarGold, 10)
	inv := NewInventory()

	_, err := Buy(cache, player, inv, 50, 1001, 1)
	if err != ErrInsufficientGold {
		t.Fatalf("expected ErrInsufficientGold, got %v", err)
	}
}

func TestBuyFailsOnUnknownVendorItem(t *testing.T) {
	cache := testCacheWithVendor()
	player := newTestPlayer()
	player.SetVariable(entity.VarGold, 1000)
	inv := NewInventory()

	_, err := Buy(cache, player, inv, 50, 9999, 1)
	if err != ErrVendorUnknown {
		t.Fatalf("expected ErrVendorUnknown, got %v", err)
	}
}

func TestSellCreditsGoldAndRecordsBuyback(t *testing.T) {
	v := NewVendor()
	player := newTestPlayer()
	player.SetVariable(entity.VarGold, 0)
	inv := NewInventory()
	inv.Add(1001, 1, false, 0)
	objID := inv.Items[0].ObjectID

	if !v.Sell(player, inv, 50, objID, 1, 12) {
		t.Fatal("Sell should succeed")
	}
	if player.Variable(entity.VarGold) != 12 {
		t.Fatalf("gold = %d, want 12", player.Variable(entity.VarGold))
	}
	ring := v.Buyback(player.GUID, 50)
	if len(ring) != 1 || ring[0].ItemID != 1001 {
		t.Fatalf("buyback ring not recorded: %+v", ring)
	}
}

func TestBuybackRingEvictsOldest(t *testing.T) {
	v := NewVendor()
	player := newTestPlayer()
	inv := NewInventory()
	for i := 0; i < MaxBuybackEntries+3; i++ {
		inv.Add(1000+i, 1, false, 0)
		objID := inv.Items[len(inv.Items)-1].ObjectID
		v.Sell(player, inv, 50, objID, 1, 1)
	}
	ring := v.Buyback(player.GUID, 50)
	if len(ring) != MaxBuybackEntries {
		t.Fatalf("ring length = %d, want %d", len(ring), MaxBuybackEntries)
	}
	if ring[0].ItemID != 1003 { // first 3 entries evicted
		t.Fatalf("oldest entries should have been evicted, got first = %+v", ring[0])
	}
}

func TestRepurchaseRestoresItemAndRemovesRingEntry(t *testing.T) {
	v := NewVendor()
	player := newTestPlayer()
	player.SetVariable(entity.VarGold, 0)
	inv := NewInventory()
	inv.Add(1001, 1, false, 0)
	objID := inv.Items[0].ObjectID
	v.Sell(player, inv, 50, objID, 1, 12)
	player.SetVariable(entity.VarGold, 12)

	lookup := func(itemID int) *content.Item { return &content.Item{ID: itemID, MaxStack: 1} }
	if !v.Repurchase(player, inv, 50, 0, lookup) {
		t.Fatal("Repurchase should succeed")
	}
	if inv.CountOf(1001) != 1 {
		t.Fatalf("item should be back in inventory, count = %d", inv.CountOf(1001))
	}
	if len(v.Buyback(player.GUID, 50)) != 0 {
		t.Fatal("buyback entry should be consumed")
	}
}
