package systems

import (
	"testing"

	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
)

func newTestPlayer() *entity.Entity {
	p := entity.New(1, entity.KindPlayer, "Tester")
	p.SetVariable(entity.VarLevel, 10)
	p.SetVariable(entity.VarClassID, 0)
	p.SetVariable(entity.VarMaxHealth, 100)
	p.SetVariable(entity.VarHealth, 100)
	p.SetVariable(entity.VarMaxMana, 50)
	p.SetVariable(entity.VarMana, 50)
	return p
}

func TestEquipMovesItemOutOfInventory(t *testing.T) {
	inv := NewInventory()
	eq := NewEquipment()
	player := newTestPlayer()
	inv.Add(1001, 1, false, 0)
	objID := inv.Items[0].ObjectID

	lookup := func(itemID int) *content.Item {
		return &content.Item{ID: 1001, SlotType: 10, MinLevel: 1, EquipClasses: 1}
	}
	if err := Equip(eq, inv, player, objID, lookup); err != nil {
		t.Fatalf("Equip: %v", err)
	}
	if len(inv.Items) != 0 {
		t.Fatalf("item should leave the inventory on equip, got %+v", inv.Items)
	}
	if eq.Get(SlotWeapon) == nil {
		t.Fatal("weapon slot should be occupied")
	}
}

func TestEquipRejectsWrongClass(t *testing.T) {
	inv := NewInventory()
	eq := NewEquipment()
	player := newTestPlayer()
	player.SetVariable(entity.VarClassID, 2)
	inv.Add(1001, 1, false, 0)
	objID := inv.Items[0].ObjectID

	lookup := func(itemID int) *content.Item {
		return &content.Item{ID: 1001, SlotType: 10, MinLevel: 1, EquipClasses: 1} // class bit 0 only
	}
	err := Equip(eq, inv, player, objID, lookup)
	if err != ErrWrongClass {
		t.Fatalf("expected ErrWrongClass, got %v", err)
	}
}

func TestEquipRejectsLevelTooLow(t *testing.T) {
	inv := NewInventory()
	eq := NewEquipment()
	player := newTestPlayer()
	player.SetVariable(entity.VarLevel, 1)
	inv.Add(1001, 1, false, 0)
	objID := inv.Items[0].ObjectID

	lookup := func(itemID int) *content.Item {
		return &content.Item{ID: 1001, SlotType: 10, MinLevel: 20}
	}
	if err := Equip(eq, inv, player, objID, lookup); err != ErrLevelTooLow {
		t.Fatalf("expected ErrLevelTooLow, got %v", err)
	}
}

func TestEquipDisplacesExistingItemToInventory(t *testing.T) {
	inv := NewInventory()
	eq := NewEquipment()
	player := newTestPlayer()
	inv.Add(1001, 1, false, 0)
	inv.Add(1002, 1, false, 0)
	first, second := inv.Items[0].ObjectID, inv.Items[1].ObjectID

	lookup := func(itemID int) *content.Item {
		return &content.Item{ID: itemID, SlotType: 10}
	}
	if err := Equip(eq, inv, player, first, lookup); err != nil {
		t.Fatalf("first equip: %v", err)
	}
	if err := Equip(eq, inv, player, second, lookup); err != nil {
		t.Fatalf("second equip: %v", err)
	}
	if eq.Get(SlotWeapon).ItemID != 1002 {
		t.Fatalf("weapon slot should hold the second item now")
	}
	if len(inv.Items) != 1 || inv.Items[0].ItemID != 1001 {
		t.Fatalf("displaced item should return to inventory, got %+v", inv.Items)
	}
}

func TestRecalcAppliesDeltaAndClampsCurrent(t *testing.T) {
	eq := NewEquipment()
	player := newTestPlayer()
	player.SetVariable(entity.VarHealth, 100)
	player.SetVariable(entity.VarMaxHealth, 100)

	helm := &Item{ItemID: 1001}
	eq.Slots[SlotHead] = helm
	bonus := func(it *Item) EquipStats {
		return EquipStats{AddHealth: 20}
	}
	total := Recalc(eq, player, EquipStats{}, bonus)
	if total.AddHealth != 20 {
		t.Fatalf("total.AddHealth = %d, want 20", total.AddHealth)
	}
	if player.Variable(entity.VarMaxHealth) != 120 {
		t.Fatalf("MaxHealth = %d, want 120", player.Variable(entity.VarMaxHealth))
	}

	// Unequipping (delta applied as prev->zero) should clamp current health back down.
	total2 := Recalc(eq2Empty(), player, total, bonus)
	if total2.AddHealth != 0 {
		t.Fatalf("total2.AddHealth = %d, want 0", total2.AddHealth)
	}
	if player.Variable(entity.VarMaxHealth) != 100 {
		t.Fatalf("MaxHealth after removal = %d, want 100", player.Variable(entity.VarMaxHealth))
	}
	if player.Variable(entity.VarHealth) > 100 {
		t.Fatalf("Health should be clamped to new max, got %d", player.Variable(entity.VarHealth))
	}
}

func eq2Empty() *Equipment { return NewEquipment() }

func TestEquipmentToSlotsAndLoadSlotsRoundTrip(t *testing.T) {
	eq := NewEquipment()
	eq.Slots[SlotWeapon] = &Item{ItemID: 1001, Count: 1}
	rows := eq.ToSlots()

	loaded := NewEquipment()
	loaded.LoadSlots(rows)
	if loaded.Get(SlotWeapon) == nil || loaded.Get(SlotWeapon).ItemID != 1001 {
		t.Fatalf("round trip lost weapon slot: %+v", loaded.Get(SlotWeapon))
	}
}
