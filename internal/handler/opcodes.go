package handler

// Opcode numbering follows a fixed partition: bidirectional 0x00,
// client-originated 0x01-0x4B, server-originated 0x50-0xA1. These values
// are this server's own assignment within that partition, not a
// transcription of any existing table.
const (
	OpPing uint16 = 0x00

	OpLogin            uint16 = 0x01
	OpCreateAccount    uint16 = 0x02
	OpCreateCharacter  uint16 = 0x03
	OpDeleteCharacter  uint16 = 0x04
	OpEnterWorld       uint16 = 0x05
	OpMove             uint16 = 0x06
	OpCastSpell        uint16 = 0x07
	OpCancelCast       uint16 = 0x08
	OpMeleeAttack      uint16 = 0x09
	OpRespawnRequest   uint16 = 0x0A

	OpInventoryMove  uint16 = 0x10
	OpInventorySplit uint16 = 0x11
	OpInventorySort  uint16 = 0x12
	OpEquip          uint16 = 0x13
	OpUnequip        uint16 = 0x14
	OpBankDeposit    uint16 = 0x15
	OpBankWithdraw   uint16 = 0x16
	OpLootTake       uint16 = 0x17

	OpVendorBuy        uint16 = 0x20
	OpVendorSell       uint16 = 0x21
	OpVendorRepurchase uint16 = 0x22

	OpQuestAccept   uint16 = 0x28
	OpQuestAbandon  uint16 = 0x29
	OpQuestComplete uint16 = 0x2A
	OpTalkToNPC     uint16 = 0x2B

	OpChatSay     uint16 = 0x30
	OpChatYell    uint16 = 0x31
	OpChatWhisper uint16 = 0x32
	OpChatParty   uint16 = 0x33
	OpChatGuild   uint16 = 0x34
	OpChatGlobal  uint16 = 0x35
	OpIgnoreAdd   uint16 = 0x36
	OpIgnoreRemove uint16 = 0x37

	OpSPing uint16 = 0x00

	OpSLoginResult           uint16 = 0x50
	OpSCharAmount            uint16 = 0x51
	OpSCharInfo              uint16 = 0x52
	OpSCreateCharacterResult uint16 = 0x53
	OpSDeleteCharacterResult uint16 = 0x54
	OpSWorldEnter            uint16 = 0x55
	OpSEntityAppear          uint16 = 0x56
	OpSEntityDisappear       uint16 = 0x57
	OpSEntityMove            uint16 = 0x58
	OpSVariableUpdate        uint16 = 0x59
	OpSCastStart             uint16 = 0x5A
	OpSCastStop              uint16 = 0x5B
	OpSCombatResult          uint16 = 0x5C
	OpSDeath                 uint16 = 0x5D
	OpSInventoryUpdate       uint16 = 0x5E
	OpSEquipmentUpdate       uint16 = 0x5F
	OpSVendorStock           uint16 = 0x60
	OpSBuybackList           uint16 = 0x61
	OpSQuestUpdate           uint16 = 0x62
	OpSGossip                uint16 = 0x63
	OpSChatMessage           uint16 = 0x64
	OpSErrorCode             uint16 = 0x65
	OpSDisconnect            uint16 = 0x66
	OpSLootWindow            uint16 = 0x67
)

// ErrorCode is a typed, localizable rejection code sent back to the
// client on a validation failure.
// State is left unchanged; only the initiating client sees the code.
type ErrorCode uint16

const (
	ErrNone ErrorCode = iota
	ErrGeneric
	ErrAccountExists
	ErrBadCredentials
	ErrAccountBanned
	ErrAlreadyOnline
	ErrNameTaken
	ErrCharacterNotFound
	ErrNotEnoughGold
	ErrInventoryFull
	ErrOutOfRange
	ErrNotEnoughMana
	ErrOnCooldown
	ErrInvalidTarget
	ErrTargetDead
	ErrNoLineOfSight
	ErrWrongClass
	ErrLevelTooLow
	ErrWrongSlotType
	ErrVendorUnknown
	ErrQuestNotAvailable
	ErrQuestNotComplete
	ErrQuestLogFull
	ErrCannotLoot
	ErrRateLimited
)

func sendError(sess sendable, code ErrorCode) {
	w := newWriter(OpSErrorCode)
	w.WriteUint16(uint16(code))
	sess.SendPacket(w.Bytes())
}

// BuildDisconnectPacket encodes the OpSDisconnect reason payload sent to
// a client when the server itself ends the connection. Wired into
// session.DisconnectPacketBuilder at start-up.
func BuildDisconnectPacket(reason string) []byte {
	w := newWriter(OpSDisconnect)
	w.WriteString(reason)
	return w.Bytes()
}
