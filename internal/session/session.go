// Package session implements the per-connection session object and its
// registry: lifecycle state, account identity, owned-player transfer, and
// the timeout/duplicate-login sweep policy.
package session

import (
	"net"
	"sync"
	"time"

	"github.com/dreadmyst/server/internal/entity"
	"github.com/dreadmyst/server/internal/wire"
)

// ClearPlayerHook is invoked by ClearPlayer to despawn and save the
// session's player in a fixed order, and to tear down any subsystem
// bound to this player (combat queue, cast state, ...). It is supplied
// by the caller (the world/handler layer) so this package stays free of
// a dependency on the world registry.
type ClearPlayerHook func(playerGUID entity.GUID)

// DisconnectPacketBuilder encodes the reason packet sent to a client
// when the server itself initiates a disconnect. Set once at start-up
// by the handler layer (which owns the opcode and wire encoding), so
// this package never imports that layer directly. Left nil, no reason
// packet is sent.
var DisconnectPacketBuilder func(reason string) []byte

// Session merges the transport, lifecycle state, and account/player
// identity for one client connection.
type Session struct {
	mu sync.Mutex

	ID      uint64
	conn    net.Conn
	state   wire.SessionState
	account string

	player    *entity.Entity
	onClear   ClearPlayerHook

	disconnectReason string
	lastActivity     time.Time
	lastPing         time.Time

	removed bool
}

func New(id uint64, conn net.Conn) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		conn:         conn,
		state:        wire.StateConnected,
		lastActivity: now,
		lastPing:     now,
	}
}

func (s *Session) State() wire.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetState(st wire.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Session) SetAuthenticated(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.state = wire.StateAuthenticated
}

func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// SetPlayer transfers ownership of player to this session (world entry).
func (s *Session) SetPlayer(player *entity.Entity, onClear ClearPlayerHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = player
	s.onClear = onClear
	s.state = wire.StateInWorld
}

func (s *Session) Player() *entity.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// ClearPlayer despawns/saves/tears down the owned player in a fixed
// order via onClear, then returns the session to `authenticated` if the
// socket is still live. It is idempotent and tolerates partial
// construction (a nil player or nil hook is a no-op).
func (s *Session) ClearPlayer() {
	s.mu.Lock()
	player, onClear := s.player, s.onClear
	s.player, s.onClear = nil, nil
	wasDisconnecting := s.state == wire.StateDisconnecting
	if !wasDisconnecting {
		s.state = wire.StateAuthenticated
	}
	s.mu.Unlock()

	if player != nil && onClear != nil {
		onClear(player.GUID)
	}
}

// SendPacket writes a frame to the connection. Outbound sends are
// rejected once the session is disconnecting.
func (s *Session) SendPacket(payload []byte) error {
	s.mu.Lock()
	disconnecting := s.state == wire.StateDisconnecting
	conn := s.conn
	s.mu.Unlock()
	if disconnecting {
		return nil
	}
	return wire.WriteFrame(conn, payload)
}

// ReadFrame blocks until the next frame arrives on the connection, or
// returns an error once the socket is closed/reset.
func (s *Session) ReadFrame() ([]byte, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	return wire.ReadFrame(conn)
}

func (s *Session) UpdateLastActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

func (s *Session) UpdateLastPing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPing = time.Now()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) LastPing() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPing
}

// InitiateDisconnect marks the session as disconnecting with reason and
// sends the disconnect reason packet while the socket is still open. It
// does not close the connection itself — SendPacket refuses writes once
// disconnecting, so the reason packet would never reach the client if
// the socket closed first. The registry closes the socket later, once a
// sweep observes ShouldRemove. Safe to call more than once.
func (s *Session) InitiateDisconnect(reason string) {
	s.mu.Lock()
	if s.state == wire.StateDisconnecting {
		s.mu.Unlock()
		return
	}
	s.state = wire.StateDisconnecting
	s.disconnectReason = reason
	conn := s.conn
	s.mu.Unlock()

	if DisconnectPacketBuilder != nil {
		wire.WriteFrame(conn, DisconnectPacketBuilder(reason))
	}
}

// Close shuts down the underlying connection. Called by the registry
// once a session has been swept out, after any reason packet has had
// its chance to go out via InitiateDisconnect.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	return conn.Close()
}

func (s *Session) DisconnectReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectReason
}

// ShouldRemove reports whether the registry sweep should drop this
// session: either it has been explicitly marked for removal, or its
// socket is dead (disconnecting with no further work pending).
func (s *Session) ShouldRemove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed || s.state == wire.StateDisconnecting
}

func (s *Session) MarkRemoved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
}
