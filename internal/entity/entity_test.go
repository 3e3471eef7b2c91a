package entity

import "testing"

func TestGUIDKindRangesAreDisjoint(t *testing.T) {
	a := NewAllocator()
	p := a.NextPlayer()
	n := a.NextNPC()
	if p.Kind() != KindPlayer {
		t.Fatalf("player GUID %s classified as %s", p, p.Kind())
	}
	if n.Kind() != KindNPC {
		t.Fatalf("npc GUID %s classified as %s", n, n.Kind())
	}
	if p == GUID(n) {
		t.Fatalf("player and npc GUIDs collided: %s", p)
	}
}

func TestAllocatorNeverRepeats(t *testing.T) {
	a := NewAllocator()
	seen := make(map[GUID]bool)
	for i := 0; i < 100; i++ {
		g := a.NextPlayer()
		if seen[g] {
			t.Fatalf("duplicate GUID allocated: %s", g)
		}
		seen[g] = true
	}
}

func TestSetVariableOnlyDirtiesOnChange(t *testing.T) {
	e := New(1, KindPlayer, "Alice")
	e.SetVariable(VarHealth, 100)
	if len(e.Dirty) != 1 {
		t.Fatalf("expected 1 dirty entry after first set, got %d", len(e.Dirty))
	}
	e.FlushDirty()

	e.SetVariable(VarHealth, 100) // same value, must not dirty
	if len(e.Dirty) != 0 {
		t.Fatalf("expected no dirty entries for a no-op set, got %d", len(e.Dirty))
	}

	e.SetVariable(VarHealth, 90)
	if got, ok := e.Dirty[VarHealth]; !ok || got != 90 {
		t.Fatalf("expected dirty VarHealth=90, got %v ok=%v", got, ok)
	}
}

func TestModifyVariable(t *testing.T) {
	e := New(1, KindPlayer, "Alice")
	e.SetVariable(VarGold, 50)
	e.FlushDirty()

	got := e.ModifyVariable(VarGold, -20)
	if got != 30 {
		t.Fatalf("ModifyVariable result = %d, want 30", got)
	}
	if e.Variable(VarGold) != 30 {
		t.Fatalf("Variable(VarGold) = %d, want 30", e.Variable(VarGold))
	}
}

func TestFlushDirtyClearsSet(t *testing.T) {
	e := New(1, KindPlayer, "Alice")
	e.SetVariable(VarHealth, 10)
	flushed := e.FlushDirty()
	if len(flushed) != 1 {
		t.Fatalf("expected 1 flushed entry, got %d", len(flushed))
	}
	if len(e.Dirty) != 0 {
		t.Fatal("Dirty should be empty immediately after flush")
	}
	if e.FlushDirty() != nil {
		t.Fatal("second flush with no changes should return nil")
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	e := r.CreatePlayer("Alice")
	r.Remove(e.GUID)
	r.Remove(e.GUID) // must not panic or error
	if r.Get(e.GUID) != nil {
		t.Fatal("entity should be gone after removal")
	}
}

func TestRegistryAliveReflectsDeadFlag(t *testing.T) {
	r := NewRegistry()
	e := r.CreatePlayer("Alice")
	if !r.Alive(e.GUID) {
		t.Fatal("freshly created entity should be alive")
	}
	e.Dead = true
	if r.Alive(e.GUID) {
		t.Fatal("entity marked dead should not be reported alive")
	}
}

func TestDistanceAndRange(t *testing.T) {
	a := New(1, KindPlayer, "A")
	b := New(2, KindPlayer, "B")
	a.X, a.Y = 0, 0
	b.X, b.Y = 3, 4
	if d := a.DistanceTo(b); d != 5 {
		t.Fatalf("DistanceTo = %v, want 5", d)
	}
	if !a.InRange(b, 5) {
		t.Fatal("expected b to be in range 5")
	}
	if a.InRange(b, 4.9) {
		t.Fatal("expected b to be out of range 4.9")
	}
}
