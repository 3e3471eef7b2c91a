package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/dreadmyst/server/internal/persist"
	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/wire"
)

// MaxCharacterSlots bounds how many characters one account may hold.
const MaxCharacterSlots = 6

// StartMapID and StartX/StartY place a freshly-created character.
const (
	StartMapID = 1
	StartX     = 100.0
	StartY     = 100.0
)

func sendCharacterList(deps *Deps, sess *session.Session) {
	chars, err := deps.Characters.ListByAccount(sess.Account())
	if err != nil {
		deps.Log.Error("load character list", zap.Error(err))
		return
	}

	sendCharAmount(sess, len(chars), MaxCharacterSlots)
	for i := range chars {
		sendCharInfo(sess, &chars[i])
	}
}

func sendCharAmount(sess *session.Session, count, maxSlots int) {
	w := newWriter(OpSCharAmount)
	w.WriteUint8(uint8(count))
	w.WriteUint8(uint8(maxSlots))
	sess.SendPacket(w.Bytes())
}

func sendCharInfo(sess *session.Session, c *persist.CharacterSummary) {
	w := newWriter(OpSCharInfo)
	w.WriteUint32(uint32(c.CharID))
	w.WriteString(c.Name)
	w.WriteUint8(uint8(c.ClassID))
	w.WriteUint8(uint8(c.Level))
	w.WriteUint16(uint16(c.MapID))
	sess.SendPacket(w.Bytes())
}

// HandleCreateCharacter processes [name][classID].
func HandleCreateCharacter(deps *Deps, sess *session.Session, r *wire.Reader) {
	name := r.ReadString()
	classID := int(r.ReadUint8())

	existing, err := deps.Characters.Load(name)
	if err != nil {
		deps.Log.Error("load character for create", zap.Error(err))
		sendCreateCharacterResult(sess, ErrGeneric)
		return
	}
	if existing != nil {
		sendCreateCharacterResult(sess, ErrNameTaken)
		return
	}

	list, err := deps.Characters.ListByAccount(sess.Account())
	if err != nil {
		deps.Log.Error("list characters for create", zap.Error(err))
		sendCreateCharacterResult(sess, ErrGeneric)
		return
	}
	if len(list) >= MaxCharacterSlots {
		sendCreateCharacterResult(sess, ErrGeneric)
		return
	}

	if _, err := deps.Characters.CreateCharacter(sess.Account(), name, classID, StartMapID, StartX, StartY); err != nil {
		deps.Log.Error("create character", zap.Error(err))
		sendCreateCharacterResult(sess, ErrGeneric)
		return
	}

	sendCreateCharacterResult(sess, ErrNone)
	sendCharacterList(deps, sess)
}

func sendCreateCharacterResult(sess *session.Session, code ErrorCode) {
	w := newWriter(OpSCreateCharacterResult)
	w.WriteUint16(uint16(code))
	sess.SendPacket(w.Bytes())
}

// HandleDeleteCharacter processes [charID].
func HandleDeleteCharacter(deps *Deps, sess *session.Session, r *wire.Reader) {
	charID := int(r.ReadUint32())

	ok, err := deps.Characters.DeleteCharacter(sess.Account(), charID, time.Now().Unix())
	if err != nil {
		deps.Log.Error("delete character", zap.Error(err))
		sendDeleteCharacterResult(sess, ErrGeneric)
		return
	}
	if !ok {
		sendDeleteCharacterResult(sess, ErrCharacterNotFound)
		return
	}

	sendDeleteCharacterResult(sess, ErrNone)
	sendCharacterList(deps, sess)
}

func sendDeleteCharacterResult(sess *session.Session, code ErrorCode) {
	w := newWriter(OpSDeleteCharacterResult)
	w.WriteUint16(uint16(code))
	sess.SendPacket(w.Bytes())
}
