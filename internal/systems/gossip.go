package systems

import "github.com/dreadmyst/server/internal/content"

// GossipStatus summarizes what an NPC has to offer a player, driving
// the icon/indicator the client shows above its head.
type GossipStatus int

const (
	GossipNone GossipStatus = iota
	GossipAvailable
	GossipQuestAvailable
	GossipQuestComplete
)

// GossipMessage is the single combined payload sent back for talking to
// an NPC: its static menu text/options plus whatever vendor stock and
// quest offers/turn-ins apply single-message requirement.
type GossipMessage struct {
	TextID   int
	Options  []string
	Stock    []content.VendorItem
	Offers   []int
	TurnIns  []int
	Status   GossipStatus
}

// BuildGossip assembles the gossip payload for npcTemplateID. Vendor
// stock is included only if the NPC has any; quest offers/turn-ins only
// if the content cache associates quests with it.
func BuildGossip(cache *content.Cache, log *QuestLog, playerLevel int, npcTemplateID int) GossipMessage {
	msg := GossipMessage{}
	if menu := cache.Gossip[npcTemplateID]; menu != nil {
		msg.TextID = menu.TextID
		msg.Options = menu.Options
	}
	msg.Stock = Stock(cache, npcTemplateID)
	msg.Offers, msg.TurnIns = OffersAndTurnIns(cache, log, playerLevel, npcTemplateID)
	msg.Status = gossipStatus(msg)
	return msg
}

func gossipStatus(msg GossipMessage) GossipStatus {
	switch {
	case len(msg.TurnIns) > 0:
		return GossipQuestComplete
	case len(msg.Offers) > 0:
		return GossipQuestAvailable
	case msg.TextID != 0 || len(msg.Options) > 0 || len(msg.Stock) > 0:
		return GossipAvailable
	default:
		return GossipNone
	}
}
