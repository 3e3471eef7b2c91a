package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/dreadmyst/server/internal/session"
	"github.com/dreadmyst/server/internal/wire"
)

// HandleLogin processes the login request: [account][password]. Success
// moves the session to authenticated and sends the character list.
func HandleLogin(deps *Deps, sess *session.Session, r *wire.Reader) {
	account := strings.ToLower(r.ReadString())
	password := r.ReadString()

	row, err := deps.Accounts.Load(account)
	if err != nil {
		deps.Log.Error("load account", zap.Error(err))
		sendLoginResult(sess, ErrGeneric)
		return
	}
	if row == nil {
		sendLoginResult(sess, ErrBadCredentials)
		return
	}
	if !deps.Accounts.ValidatePassword(row.PasswordHash, password) {
		sendLoginResult(sess, ErrBadCredentials)
		return
	}
	if row.Banned {
		sendLoginResult(sess, ErrAccountBanned)
		return
	}
	if existing := deps.Sessions.GetByAccountID(account); existing != nil {
		sendLoginResult(sess, ErrAlreadyOnline)
		return
	}

	if err := deps.Accounts.UpdateLastActive(account); err != nil {
		deps.Log.Error("update last active", zap.Error(err))
	}

	sess.SetAuthenticated(account)
	deps.Sessions.BindAccount(account, sess)
	sendLoginResult(sess, ErrNone)
	sendCharacterList(deps, sess)

	deps.Log.Info("account logged in", zap.String("account", account))
}

// HandleCreateAccount processes the registration request: [account][password].
func HandleCreateAccount(deps *Deps, sess *session.Session, r *wire.Reader) {
	account := strings.ToLower(r.ReadString())
	password := r.ReadString()

	existing, err := deps.Accounts.Load(account)
	if err != nil {
		deps.Log.Error("load account for create", zap.Error(err))
		sendLoginResult(sess, ErrGeneric)
		return
	}
	if existing != nil {
		sendLoginResult(sess, ErrAccountExists)
		return
	}
	if _, err := deps.Accounts.Create(account, password); err != nil {
		deps.Log.Error("create account", zap.Error(err))
		sendLoginResult(sess, ErrGeneric)
		return
	}

	deps.Log.Info("account created", zap.String("account", account))
	sess.SetAuthenticated(account)
	deps.Sessions.BindAccount(account, sess)
	sendLoginResult(sess, ErrNone)
	sendCharacterList(deps, sess)
}

func sendLoginResult(sess *session.Session, reason ErrorCode) {
	w := newWriter(OpSLoginResult)
	w.WriteUint16(uint16(reason))
	sess.SendPacket(w.Bytes())
}
