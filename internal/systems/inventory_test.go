package systems

import "testing"

func TestInventoryAddStacksThenSplitsOverflow(t *testing.T) {
	inv := NewInventory()
	if !inv.Add(1001, 15, true, 10) {
		t.Fatalf("Add should succeed")
	}
	if got := inv.CountOf(1001); got != 15 {
		t.Fatalf("CountOf = %d, want 15", got)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("expected overflow split into 2 slots, got %d", len(inv.Items))
	}
}

func TestInventoryAddNonStackableSingleSlot(t *testing.T) {
	inv := NewInventory()
	inv.Add(2002, 3, false, 0)
	if len(inv.Items) != 1 || inv.Items[0].Count != 3 {
		t.Fatalf("non-stackable Add should place the whole count in one slot, got %+v", inv.Items)
	}
}

func TestInventoryAddFailsWhenFull(t *testing.T) {
	inv := NewInventory()
	inv.MaxSlots = 1
	inv.Add(1, 1, false, 0)
	if inv.Add(2, 1, false, 0) {
		t.Fatal("Add should fail once inventory is full")
	}
}

func TestInventoryRemoveDeletesEmptiedSlot(t *testing.T) {
	inv := NewInventory()
	inv.Add(1001, 5, true, 10)
	objID := inv.Items[0].ObjectID
	if !inv.Remove(objID, 5) {
		t.Fatal("Remove should succeed")
	}
	if len(inv.Items) != 0 {
		t.Fatalf("slot should be removed once emptied, got %d items", len(inv.Items))
	}
}

func TestInventoryRemoveRejectsOverdraw(t *testing.T) {
	inv := NewInventory()
	inv.Add(1001, 3, true, 10)
	objID := inv.Items[0].ObjectID
	if inv.Remove(objID, 4) {
		t.Fatal("Remove should fail when count exceeds the slot")
	}
}

func TestInventorySplit(t *testing.T) {
	inv := NewInventory()
	inv.Add(1001, 10, true, 20)
	objID := inv.Items[0].ObjectID
	newItem, ok := inv.Split(objID, 4)
	if !ok || newItem.Count != 4 {
		t.Fatalf("Split failed: %+v, %v", newItem, ok)
	}
	if inv.FindByObjectID(objID).Count != 6 {
		t.Fatalf("source slot should have 6 left, got %d", inv.FindByObjectID(objID).Count)
	}
}

func TestInventorySortOrdersByItemIDThenCountDesc(t *testing.T) {
	inv := NewInventory()
	inv.Add(200, 1, false, 0)
	inv.Add(100, 5, true, 99)
	inv.Add(100, 2, false, 0)
	inv.Sort()
	if inv.Items[0].ItemID != 100 || inv.Items[0].Count != 5 {
		t.Fatalf("expected item 100 count 5 first, got %+v", inv.Items[0])
	}
}

func TestInventoryQuestItemHookFires(t *testing.T) {
	inv := NewInventory()
	var lastItemID, lastCount int
	calls := 0
	inv.OnQuestItemChange = func(itemID int, newCount int) {
		calls++
		lastItemID, lastCount = itemID, newCount
	}
	inv.Add(1001, 3, true, 10)
	if calls != 1 || lastItemID != 1001 || lastCount != 3 {
		t.Fatalf("hook not fired correctly: calls=%d id=%d count=%d", calls, lastItemID, lastCount)
	}
}

func TestInventoryToSlotsAndLoadSlotsRoundTrip(t *testing.T) {
	inv := NewInventory()
	inv.Add(1001, 3, true, 10)
	inv.Add(2002, 1, false, 0)
	rows := inv.ToSlots()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	loaded := NewInventory()
	loaded.LoadSlots(rows)
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items after LoadSlots, got %d", len(loaded.Items))
	}
	if loaded.CountOf(1001) != 3 {
		t.Fatalf("round-trip lost count: %d", loaded.CountOf(1001))
	}
}
