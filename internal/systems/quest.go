package systems

import (
	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/persist"
)

// MaxActiveQuests bounds how many in-progress-or-complete quests one
// player may track at once.
const MaxActiveQuests = 25

type QuestStatus int

const (
	QuestNotStarted QuestStatus = iota
	QuestInProgress
	QuestComplete
	QuestRewarded
)

// QuestState is one player's progress on one quest.
type QuestState struct {
	QuestID  int
	Status   QuestStatus
	Progress [4]int
}

// QuestLog is a player's full set of tracked quests, keyed by quest id.
type QuestLog struct {
	quests map[int]*QuestState
}

func NewQuestLog() *QuestLog {
	return &QuestLog{quests: make(map[int]*QuestState)}
}

func (l *QuestLog) Get(questID int) *QuestState { return l.quests[questID] }

func (l *QuestLog) Has(questID int) bool { _, ok := l.quests[questID]; return ok }

func (l *QuestLog) activeCount() int {
	n := 0
	for _, s := range l.quests {
		if s.Status == QuestInProgress || s.Status == QuestComplete {
			n++
		}
	}
	return n
}

func (l *QuestLog) ToEntries() []persist.QuestEntry {
	out := make([]persist.QuestEntry, 0, len(l.quests))
	for _, s := range l.quests {
		out = append(out, persist.QuestEntry{QuestID: s.QuestID, Status: int(s.Status), Progress: s.Progress})
	}
	return out
}

func (l *QuestLog) LoadEntries(rows []persist.QuestEntry) {
	l.quests = make(map[int]*QuestState, len(rows))
	for _, r := range rows {
		l.quests[r.QuestID] = &QuestState{QuestID: r.QuestID, Status: QuestStatus(r.Status), Progress: r.Progress}
	}
}

// TallyEvent is emitted whenever accepting/advancing/completing/
// abandoning a quest changes its state, for the handler to turn into a
// quest-tally/quest-complete/rewarded-quest/abandon packet.
type TallyEvent struct {
	QuestID  int
	Slot     int
	Progress int
	Complete bool
}

// IsAvailable reports whether questID can be newly accepted by player,
// per its level gate and the prereq quest chain: every listed prereq
// must already be Rewarded, and the quest must not already be tracked.
func IsAvailable(cache *content.Cache, log *QuestLog, playerLevel int, questID int) bool {
	q := cache.Quests[questID]
	if q == nil {
		return false
	}
	if playerLevel < q.MinLevel {
		return false
	}
	if log.Has(questID) {
		return false
	}
	if q.PrereqQuestID > 0 {
		prev := log.Get(q.PrereqQuestID)
		if prev == nil || prev.Status != QuestRewarded {
			return false
		}
	}
	return true
}

// Accept adds questID to log if available and the active-quest cap
// allows it.
func Accept(cache *content.Cache, log *QuestLog, playerLevel int, questID int) bool {
	if log.activeCount() >= MaxActiveQuests {
		return false
	}
	if !IsAvailable(cache, log, playerLevel, questID) {
		return false
	}
	log.quests[questID] = &QuestState{QuestID: questID, Status: QuestInProgress}
	checkCompletion(cache, log, questID)
	return true
}

// Abandon removes questID from log entirely.
func Abandon(log *QuestLog, questID int) bool {
	if !log.Has(questID) {
		return false
	}
	delete(log.quests, questID)
	return true
}

func checkCompletion(cache *content.Cache, log *QuestLog, questID int) bool {
	q := cache.Quests[questID]
	state := log.Get(questID)
	if q == nil || state == nil {
		return false
	}
	complete := true
	for _, obj := range q.Objectives {
		if obj.Kind == content.ObjectiveKindNone {
			continue
		}
		if state.Progress[objSlot(q, obj)] < obj.Required {
			complete = false
			break
		}
	}
	switch {
	case complete && state.Status == QuestInProgress:
		state.Status = QuestComplete
		return true
	case !complete && state.Status == QuestComplete:
		state.Status = QuestInProgress
		return true
	}
	return false
}

func objSlot(q *content.Quest, obj content.QuestObjective) int {
	for i, o := range q.Objectives {
		if o == obj {
			return i
		}
	}
	return 0
}

func advance(cache *content.Cache, log *QuestLog, kind content.ObjectiveKind, targetID int, newValueFor func(current, required int) int) []TallyEvent {
	var events []TallyEvent
	for questID, state := range log.quests {
		if state.Status != QuestInProgress {
			continue
		}
		q := cache.Quests[questID]
		if q == nil {
			continue
		}
		changed := false
		for slot, obj := range q.Objectives {
			if obj.Kind != kind || obj.TargetID != targetID {
				continue
			}
			next := newValueFor(state.Progress[slot], obj.Required)
			if next == state.Progress[slot] {
				continue
			}
			state.Progress[slot] = next
			changed = true
			events = append(events, TallyEvent{QuestID: questID, Slot: slot, Progress: next})
		}
		if changed && checkCompletion(cache, log, questID) {
			last := &events[len(events)-1]
			last.Complete = log.Get(questID).Status == QuestComplete
		}
	}
	return events
}

// AdvanceOnKill bumps every in-progress kill objective targeting
// npcTemplateID by one, capped at its required count.
func AdvanceOnKill(cache *content.Cache, log *QuestLog, npcTemplateID int) []TallyEvent {
	return advance(cache, log, content.ObjectiveKindKill, npcTemplateID, func(cur, req int) int {
		if cur+1 > req {
			return req
		}
		return cur + 1
	})
}

// AdvanceOnItemCount resolves every in-progress item-count objective for
// itemID to min(currentCarried, required), since item objectives track
// total held rather than a cumulative counter.
func AdvanceOnItemCount(cache *content.Cache, log *QuestLog, itemID int, carried int) []TallyEvent {
	return advance(cache, log, content.ObjectiveKindItemCount, itemID, func(_, req int) int {
		if carried > req {
			return req
		}
		return carried
	})
}

// AdvanceOnSpellCast bumps every in-progress spell-cast objective for
// spellID by one, capped at its required count.
func AdvanceOnSpellCast(cache *content.Cache, log *QuestLog, spellID int) []TallyEvent {
	return advance(cache, log, content.ObjectiveKindSpellCast, spellID, func(cur, req int) int {
		if cur+1 > req {
			return req
		}
		return cur + 1
	})
}

// Complete grants rewards (gold, XP, item) for a Complete quest and
// marks it Rewarded, or removes it entirely if repeatable.
func Complete(cache *content.Cache, log *QuestLog, player *entity.Entity, inv *Inventory, questID int) bool {
	state := log.Get(questID)
	if state == nil || state.Status != QuestComplete {
		return false
	}
	q := cache.Quests[questID]
	if q == nil {
		return false
	}
	if q.RewardGold > 0 {
		player.SetVariable(entity.VarGold, player.Variable(entity.VarGold)+int32(q.RewardGold))
	}
	if q.RewardXP > 0 {
		ApplyExperience(player, cache, q.RewardXP)
	}
	if q.RewardItemID > 0 {
		tpl := cache.Items[q.RewardItemID]
		stackable, maxStack := false, 0
		if tpl != nil {
			stackable, maxStack = tpl.MaxStack > 1, tpl.MaxStack
		}
		inv.Add(q.RewardItemID, 1, stackable, maxStack)
	}
	if q.Repeatable {
		delete(log.quests, questID)
	} else {
		state.Status = QuestRewarded
	}
	return true
}

// OffersAndTurnIns splits quests associated with npcTemplateID into
// ones the player can newly accept (StartNpcID match, available) and
// ones they can turn in here (FinishNpcID match, already Complete).
func OffersAndTurnIns(cache *content.Cache, log *QuestLog, playerLevel int, npcTemplateID int) (offers []int, turnIns []int) {
	for questID, q := range cache.Quests {
		if q.StartNpcID == npcTemplateID && IsAvailable(cache, log, playerLevel, questID) {
			offers = append(offers, questID)
		}
		if q.FinishNpcID == npcTemplateID {
			if state := log.Get(questID); state != nil && state.Status == QuestComplete {
				turnIns = append(turnIns, questID)
			}
		}
	}
	return offers, turnIns
}
