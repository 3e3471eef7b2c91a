package combat

import (
	"math/rand"
	"testing"
)

func TestRollExtremeDodgeStaysWithinCaps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	att := AttackerStats{}
	def := DefenderStats{DodgeRating: 100000}
	normal := 0
	for i := 0; i < 200; i++ {
		r := Roll(rng, att, def, Suppressed{})
		switch r {
		case ResultMiss, ResultDodge:
		case ResultNormal:
			normal++
		default:
			t.Fatalf("expected miss, dodge or normal hit with extreme dodge rating, got %s", r)
		}
	}
	// Miss caps at 25% and dodge at 30%, so about 45% of rolls still land.
	if normal < 60 || normal > 120 {
		t.Fatalf("normal hits = %d of 200, want about 90 with miss and dodge at their caps", normal)
	}
}

func TestRollSuppressedSlotsNeverFire(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	att := AttackerStats{CriticalRating: 100000}
	def := DefenderStats{DodgeRating: 100000, ParryRating: 100000}
	sup := Suppressed{Dodge: true, Parry: true, Crit: true}
	for i := 0; i < 500; i++ {
		r := Roll(rng, att, def, sup)
		if r == ResultDodge || r == ResultParry || r == ResultCrit {
			t.Fatalf("suppressed slot %s fired", r)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(-1, 0, 10); got != 0 {
		t.Fatalf("clamp low: got %v", got)
	}
	if got := clamp(11, 0, 10); got != 10 {
		t.Fatalf("clamp high: got %v", got)
	}
	if got := clamp(5, 0, 10); got != 5 {
		t.Fatalf("clamp mid: got %v", got)
	}
}
