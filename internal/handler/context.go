// Package handler implements every opcode handler and the state-gated
// registration table that wires them into a wire.Router.
package handler

import (
	"math/rand"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dreadmyst/server/internal/combat"
	"github.com/dreadmyst/server/internal/config"
	"github.com/dreadmyst/server/internal/content"
	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/mapgrid"
	"github.com/dreadmyst/server/internal/persist"
	"github.com/dreadmyst/server/internal/saver"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/systems"
	"github.com/dreadmyst/server/internal/wire"
	"github.com/dreadmyst/server/internal/world"
)

// PlayerState is every piece of in-world state a player carries beyond
// its entity.Entity record: inventory/bank/equipment, quest log,
// combat bookkeeping, and chat moderation. Indexed by player GUID in
// Deps.Players, created on world entry and torn down on ClearPlayer.
type PlayerState struct {
	CharID     int
	Inventory  *systems.Inventory
	Bank       *systems.Bank
	Equipment  *systems.Equipment
	QuestLog   *systems.QuestLog
	Cooldowns  *combat.CooldownTable
	Ignore     *systems.IgnoreList
	Cast       *combat.Cast
	Auras      *combat.Manager
	EquipStats systems.EquipStats
	StatBonus  [8]int
}

// Deps is the service container every handler closure is given, built
// once at start-up and never reassigned.
type Deps struct {
	Log    *zap.Logger
	Config *config.Config
	Rng    *rand.Rand

	Content     *content.Cache
	Accounts    *persist.AccountRepo
	Characters  *persist.CharacterRepo
	Maps        *mapgrid.Manager
	Saver       *saver.Saver

	Sessions *session.Registry
	Entities *entity.Registry
	World    *world.Registry

	Players    map[entity.GUID]*PlayerState
	SessionOf  map[entity.GUID]*session.Session
	NPCThreat  map[entity.GUID]*combat.ThreatTable
	NPCCorpses map[entity.GUID]*systems.Corpse
	NPCAuras   map[entity.GUID]*combat.Manager
	Vendors    *systems.Vendor

	ChatLimiter *systems.ChatLimiter

	// NPCDeathHook notifies the owner of the NPC AI spawner tables that
	// guid died, so its spawn row can start its respawn timer. Wired by
	// cmd/server after building the per-map spawners; nil in tests that
	// never construct them.
	NPCDeathHook func(guid entity.GUID)

	// tick is the world's current tick counter, advanced by cmd/server's
	// tick loop and read by handlers that need a rate-limit clock (chat).
	tick uint64
}

// auraManagerFor returns the combat.Manager tracking guid's applied
// auras, creating an NPC's the first time it's needed (a player's is
// created on world entry alongside the rest of its PlayerState). Any guid
// without a PlayerState gets a manager stored in NPCAuras on first use,
// so it never returns nil.
func (d *Deps) auraManagerFor(guid entity.GUID) *combat.Manager {
	if ps := d.Players[guid]; ps != nil {
		if ps.Auras == nil {
			ps.Auras = combat.NewManager()
		}
		return ps.Auras
	}
	if m, ok := d.NPCAuras[guid]; ok {
		return m
	}
	m := combat.NewManager()
	d.NPCAuras[guid] = m
	return m
}

// Tick returns the current world tick, safe for concurrent access from
// the tick loop goroutine.
func (d *Deps) Tick() uint64 { return atomic.LoadUint64(&d.tick) }

// SetTick is called once per tick by the world loop.
func (d *Deps) SetTick(t uint64) { atomic.StoreUint64(&d.tick, t) }

// NewDeps wires together a freshly-constructed Deps from its component
// pieces. cmd/server calls this once after loading the content cache and
// opening both stores.
func NewDeps(log *zap.Logger, cfg *config.Config, cache *content.Cache, accounts *persist.AccountRepo,
	characters *persist.CharacterRepo, maps *mapgrid.Manager, sv *saver.Saver,
	sessions *session.Registry, entities *entity.Registry, wld *world.Registry) *Deps {
	return &Deps{
		Log:         log,
		Config:      cfg,
		Rng:         rand.New(rand.NewSource(1)),
		Content:     cache,
		Accounts:    accounts,
		Characters:  characters,
		Maps:        maps,
		Saver:       sv,
		Sessions:    sessions,
		Entities:    entities,
		World:       wld,
		Players:     make(map[entity.GUID]*PlayerState),
		SessionOf:   make(map[entity.GUID]*session.Session),
		NPCThreat:   make(map[entity.GUID]*combat.ThreatTable),
		NPCCorpses:  make(map[entity.GUID]*systems.Corpse),
		NPCAuras:    make(map[entity.GUID]*combat.Manager),
		Vendors:     systems.NewVendor(),
		ChatLimiter: systems.NewChatLimiter(),
	}
}

// sendable is the minimal surface opcodes.go's sendError helper needs
// from a session; *session.Session satisfies it.
type sendable interface {
	SendPacket(payload []byte) error
}

func newWriter(opcode uint16) *wire.Writer { return wire.NewWriter(opcode) }

// asSession recovers the concrete *session.Session from the wire.Router's
// HandlerFunc's `sess any` parameter, keeping wire free of a session
// import.
func asSession(sess any) *session.Session {
	s, _ := sess.(*session.Session)
	return s
}

// RegisterAll binds every opcode this server understands to its handler,
// gated by the session lifecycle state: connected -> authenticated ->
// in-world progression.
func RegisterAll(rt *wire.Router, deps *Deps) {
	reg := func(op uint16, name string, state wire.SessionState, allowHigher bool, fn func(*Deps, *session.Session, *wire.Reader)) {
		rt.Register(op, name, state, allowHigher, func(sess any, r *wire.Reader) {
			fn(deps, asSession(sess), r)
		})
	}

	reg(OpLogin, "login", wire.StateConnected, false, HandleLogin)
	reg(OpCreateAccount, "create_account", wire.StateConnected, false, HandleCreateAccount)

	reg(OpCreateCharacter, "create_character", wire.StateAuthenticated, false, HandleCreateCharacter)
	reg(OpDeleteCharacter, "delete_character", wire.StateAuthenticated, false, HandleDeleteCharacter)
	reg(OpEnterWorld, "enter_world", wire.StateAuthenticated, false, HandleEnterWorld)

	reg(OpMove, "move", wire.StateInWorld, false, HandleMove)
	reg(OpRespawnRequest, "respawn_request", wire.StateInWorld, false, HandleRespawnRequest)

	reg(OpCastSpell, "cast_spell", wire.StateInWorld, false, HandleCastSpell)
	reg(OpCancelCast, "cancel_cast", wire.StateInWorld, false, HandleCancelCast)
	reg(OpMeleeAttack, "melee_attack", wire.StateInWorld, false, HandleMeleeAttack)

	reg(OpInventoryMove, "inventory_move", wire.StateInWorld, false, HandleInventoryMove)
	reg(OpInventorySplit, "inventory_split", wire.StateInWorld, false, HandleInventorySplit)
	reg(OpInventorySort, "inventory_sort", wire.StateInWorld, false, HandleInventorySort)
	reg(OpEquip, "equip", wire.StateInWorld, false, HandleEquip)
	reg(OpUnequip, "unequip", wire.StateInWorld, false, HandleUnequip)
	reg(OpBankDeposit, "bank_deposit", wire.StateInWorld, false, HandleBankDeposit)
	reg(OpBankWithdraw, "bank_withdraw", wire.StateInWorld, false, HandleBankWithdraw)
	reg(OpLootTake, "loot_take", wire.StateInWorld, false, HandleLootTake)

	reg(OpVendorBuy, "vendor_buy", wire.StateInWorld, false, HandleVendorBuy)
	reg(OpVendorSell, "vendor_sell", wire.StateInWorld, false, HandleVendorSell)
	reg(OpVendorRepurchase, "vendor_repurchase", wire.StateInWorld, false, HandleVendorRepurchase)

	reg(OpQuestAccept, "quest_accept", wire.StateInWorld, false, HandleQuestAccept)
	reg(OpQuestAbandon, "quest_abandon", wire.StateInWorld, false, HandleQuestAbandon)
	reg(OpQuestComplete, "quest_complete", wire.StateInWorld, false, HandleQuestComplete)
	reg(OpTalkToNPC, "talk_to_npc", wire.StateInWorld, false, HandleTalkToNPC)

	reg(OpChatSay, "chat_say", wire.StateInWorld, false, HandleChatSay)
	reg(OpChatYell, "chat_yell", wire.StateInWorld, false, HandleChatYell)
	reg(OpChatWhisper, "chat_whisper", wire.StateInWorld, false, HandleChatWhisper)
	reg(OpChatGuild, "chat_guild", wire.StateInWorld, false, HandleChatGuild)
	reg(OpChatGlobal, "chat_global", wire.StateInWorld, false, HandleChatGlobal)
	reg(OpIgnoreAdd, "ignore_add", wire.StateInWorld, false, HandleIgnoreAdd)
	reg(OpIgnoreRemove, "ignore_remove", wire.StateInWorld, false, HandleIgnoreRemove)

	reg(OpPing, "ping", wire.StateConnected, true, HandlePing)
}
