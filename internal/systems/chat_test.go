package systems

import (
	"testing"

	"github.com/dreadmyst/server/internal/entity"
)

func TestChatLimiterAllowsUpToLimitThenBlocks(t *testing.T) {
	l := NewChatLimiter()
	var sender entity.GUID = 1
	for i := 0; i < chatRateLimit; i++ {
		if !l.Allow(sender, 0) {
			t.Fatalf("message %d should be allowed within the window", i)
		}
	}
	if l.Allow(sender, 0) {
		t.Fatal("message past the window limit should be blocked")
	}
}

func TestChatLimiterResetsOnNewWindow(t *testing.T) {
	l := NewChatLimiter()
	var sender entity.GUID = 1
	for i := 0; i < chatRateLimit; i++ {
		l.Allow(sender, 0)
	}
	if !l.Allow(sender, chatRateWindowTicks) {
		t.Fatal("a new window should reset the counter")
	}
}

func TestIgnoreList(t *testing.T) {
	il := NewIgnoreList()
	var who entity.GUID = 7
	if il.Has(who) {
		t.Fatal("should not be ignored by default")
	}
	il.Add(who)
	if !il.Has(who) {
		t.Fatal("should be ignored after Add")
	}
	il.Remove(who)
	if il.Has(who) {
		t.Fatal("should not be ignored after Remove")
	}
}

func TestRouteWhisperTargetsOnlyRecipient(t *testing.T) {
	msg := ChatMessage{Sender: 1, Channel: ChatWhisper, Target: 2}
	out := Route(msg, 1, 0, 0, nil, nil, nil)
	if len(out) != 1 || out[0] != 2 {
		t.Fatalf("whisper should route to exactly the target, got %v", out)
	}
}

func TestRouteSayUsesNearbyLookup(t *testing.T) {
	msg := ChatMessage{Sender: 1, Channel: ChatSay}
	nearby := func(mapID int, x, y, radius float64) []entity.GUID {
		if radius != SayRadius {
			t.Fatalf("say should query at SayRadius, got %v", radius)
		}
		return []entity.GUID{1, 2, 3}
	}
	out := Route(msg, 1, 10, 10, nearby, nil, nil)
	if len(out) != 3 {
		t.Fatalf("expected 3 recipients, got %v", out)
	}
}

func TestRouteFiltersIgnoredSender(t *testing.T) {
	msg := ChatMessage{Sender: 1, Channel: ChatSay}
	nearby := func(mapID int, x, y, radius float64) []entity.GUID {
		return []entity.GUID{1, 2}
	}
	ignoreLists := map[entity.GUID]*IgnoreList{2: NewIgnoreList()}
	ignoreLists[2].Add(1)
	ignoreOf := func(g entity.GUID) *IgnoreList { return ignoreLists[g] }

	out := Route(msg, 1, 0, 0, nearby, nil, ignoreOf)
	for _, g := range out {
		if g == 2 {
			t.Fatal("recipient who ignores the sender should be filtered out")
		}
	}
	if len(out) != 1 || out[0] != 1 {
		t.Fatalf("expected only the sender to remain, got %v", out)
	}
}

func TestRouteGlobalReturnsNilForHandlerBroadcast(t *testing.T) {
	msg := ChatMessage{Sender: 1, Channel: ChatGlobal}
	out := Route(msg, 1, 0, 0, nil, nil, nil)
	if out != nil {
		t.Fatalf("global channel should return nil for the handler to broadcast directly, got %v", out)
	}
}

func TestRoutePartyUsesGroupLookup(t *testing.T) {
	msg := ChatMessage{Sender: 1, Channel: ChatParty}
	group := func(g entity.GUID) []entity.GUID { return []entity.GUID{1, 5, 6} }
	out := Route(msg, 1, 0, 0, nil, group, nil)
	if len(out) != 3 {
		t.Fatalf("expected party members, got %v", out)
	}
}
