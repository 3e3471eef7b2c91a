package combat

import (
	"testing"
	"time"
)

func TestCooldownBlocksUntilExpiry(t *testing.T) {
	c := NewCooldownTable()
	now := time.Unix(0, 0)
	c.StartCooldown(1, 0, 5*time.Second, now)

	if c.IsReady(1, 0, now.Add(4*time.Second)) {
		t.Fatalf("expected spell still on cooldown")
	}
	if !c.IsReady(1, 0, now.Add(5*time.Second)) {
		t.Fatalf("expected spell ready at exact expiry")
	}
}

func TestCooldownCategoryLocksSiblingSpells(t *testing.T) {
	c := NewCooldownTable()
	now := time.Unix(0, 0)
	c.StartCooldown(1, 7, 10*time.Second, now)

	if c.IsReady(2, 7, now.Add(1*time.Second)) {
		t.Fatalf("expected category lockout to block spell 2")
	}
}

func TestGCDBlocksIndependentlyOfSpellCooldown(t *testing.T) {
	c := NewCooldownTable()
	now := time.Unix(0, 0)
	c.StartGCD(1500*time.Millisecond, now)

	if c.IsReady(99, 0, now.Add(1*time.Second)) {
		t.Fatalf("expected GCD to block unrelated spell")
	}
	if !c.IsReady(99, 0, now.Add(2*time.Second)) {
		t.Fatalf("expected GCD expired")
	}
}

func TestRemainingReportsZeroWhenReady(t *testing.T) {
	c := NewCooldownTable()
	now := time.Unix(0, 0)
	if r := c.Remaining(1, now); r != 0 {
		t.Fatalf("expected 0 remaining for never-used spell, got %v", r)
	}
}
