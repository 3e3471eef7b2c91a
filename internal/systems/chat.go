package systems

import "github.com/dreadmyst/server/internal/entity"

// ChatChannel selects routing and rate-limit treatment for a message.
type ChatChannel int

const (
	ChatSay ChatChannel = iota
	ChatYell
	ChatWhisper
	ChatParty
	ChatGuild
	ChatGlobal
	ChatSystem
)

// Range-limited channels only reach players within this radius of the
// sender, on the same map.
const (
	SayRadius  = 20.0
	YellRadius = 60.0
)

// chatRateWindowTicks and chatRateLimit bound a fixed-window counter:
// at most chatRateLimit messages per chatRateWindowTicks world ticks,
// per sender. A hand-rolled counter rather than a generic token bucket
// since the only input is "which tick is it".
const (
	chatRateWindowTicks = 100
	chatRateLimit       = 10
)

// ChatLimiter tracks each sender's fixed-window message count.
type ChatLimiter struct {
	windows map[entity.GUID]*chatWindow
}

type chatWindow struct {
	start uint64
	count int
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{windows: make(map[entity.GUID]*chatWindow)}
}

// Allow reports whether sender may send another message at the given
// tick, incrementing its window counter if so.
func (l *ChatLimiter) Allow(sender entity.GUID, tick uint64) bool {
	w := l.windows[sender]
	if w == nil || tick-w.start >= chatRateWindowTicks {
		w = &chatWindow{start: tick}
		l.windows[sender] = w
	}
	if w.count >= chatRateLimit {
		return false
	}
	w.count++
	return true
}

// IgnoreList is one player's set of senders they don't want to hear
// from, keyed by the ignored player's GUID.
type IgnoreList struct {
	ignored map[entity.GUID]bool
}

func NewIgnoreList() *IgnoreList {
	return &IgnoreList{ignored: make(map[entity.GUID]bool)}
}

func (l *IgnoreList) Add(who entity.GUID)    { l.ignored[who] = true }
func (l *IgnoreList) Remove(who entity.GUID) { delete(l.ignored, who) }
func (l *IgnoreList) Has(who entity.GUID) bool {
	return l.ignored[who]
}

// NearbyLookup resolves same-map players within a radius of a position,
// injected so this package never imports the world registry.
type NearbyLookup func(mapID int, x, y, radius float64) []entity.GUID

// GroupLookup resolves party or guild membership for a player, injected
// for the same reason as systems.PartyLookup in loot.go — those social
// subsystems are out of this module's scope.
type GroupLookup func(entity.GUID) []entity.GUID

// ChatMessage is one routed chat line ready for the handler to encode
// and send to each recipient.
type ChatMessage struct {
	Sender   entity.GUID
	Channel  ChatChannel
	Text     string
	Target   entity.GUID // whisper recipient only
}

// Route resolves the set of recipients for msg, applying range limits
// for Say/Yell, group membership for Party/Guild, and every recipient's
// ignore list. Whisper resolves to exactly [msg.Target] unless ignored.
func Route(msg ChatMessage, mapID int, senderX, senderY float64, nearby NearbyLookup, group GroupLookup, ignoreOf func(entity.GUID) *IgnoreList) []entity.GUID {
	var candidates []entity.GUID
	switch msg.Channel {
	case ChatWhisper:
		candidates = []entity.GUID{msg.Target}
	case ChatSay:
		if nearby != nil {
			candidates = nearby(mapID, senderX, senderY, SayRadius)
		}
	case ChatYell:
		if nearby != nil {
			candidates = nearby(mapID, senderX, senderY, YellRadius)
		}
	case ChatParty, ChatGuild:
		if group != nil {
			candidates = group(msg.Sender)
		}
	case ChatGlobal, ChatSystem:
		return nil // handler broadcasts these to the full session registry directly
	}

	out := candidates[:0]
	for _, g := range candidates {
		if g == msg.Sender {
			out = append(out, g)
			continue
		}
		if ignoreOf != nil {
			if il := ignoreOf(g); il != nil && il.Has(msg.Sender) {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}
