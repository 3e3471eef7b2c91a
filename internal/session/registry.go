package session

import (
	"sync"
	"time"

	"github.com/dreadmyst/server/internal/wire"
)

// Timeout budgets are state-specific.
const (
	AuthenticateTimeout  = 30 * time.Second
	CharacterSelectTimeout = 300 * time.Second
	InWorldPingTimeout   = 120 * time.Second
)

// Registry maps connection id to Session and account name to its active
// session, guarded by a single mutex. Iteration copies ids to a local
// slice before releasing the lock, so a handler invoked during a sweep
// never holds the registry mutex reentrantly.
type Registry struct {
	mu       sync.Mutex
	byID     map[uint64]*Session
	byAccount map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		byID:      make(map[uint64]*Session),
		byAccount: make(map[string]*Session),
	}
}

func (r *Registry) Create(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
}

func (r *Registry) Remove(id uint64) {
	r.mu.Lock()
	s, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byID, id)
	if acct := s.Account(); acct != "" {
		if cur, ok := r.byAccount[acct]; ok && cur == s {
			delete(r.byAccount, acct)
		}
	}
	r.mu.Unlock()
	s.Close()
}

func (r *Registry) GetByID(id uint64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

// GetByAccountID returns the active session for account, if it is
// currently at least authenticated.
func (r *Registry) GetByAccountID(account string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byAccount[account]
}

// BindAccount registers s as the active session for account, recording
// it for GetByAccountID/KickDuplicateLogin.
func (r *Registry) BindAccount(account string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAccount[account] = s
}

// KickDuplicateLogin disconnects any existing session already bound to
// account, making way for a fresh login.
func (r *Registry) KickDuplicateLogin(account string) {
	r.mu.Lock()
	existing := r.byAccount[account]
	r.mu.Unlock()
	if existing != nil {
		existing.InitiateDisconnect("duplicate login")
	}
}

// DisconnectAll marks every session disconnecting with reason, e.g. for
// the shutdown drain.
func (r *Registry) DisconnectAll(reason string) {
	for _, s := range r.snapshot() {
		s.InitiateDisconnect(reason)
	}
}

// ForEach calls fn for every session, under the registry's lock only
// long enough to copy the id list.
func (r *Registry) ForEach(fn func(*Session)) {
	for _, s := range r.snapshot() {
		fn(s)
	}
}

func (r *Registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

// Sweep applies state-specific timeout budgets, disconnecting sessions
// that have exceeded theirs, then removes any session ShouldRemove
// reports as done. Called once per tick by the world loop.
func (r *Registry) Sweep(now time.Time) {
	for _, s := range r.snapshot() {
		st := s.State()
		idle := now.Sub(s.LastActivity())

		switch st {
		case wire.StateConnected:
			if idle > AuthenticateTimeout {
				s.InitiateDisconnect("authentication timeout")
			}
		case wire.StateAuthenticated:
			if idle > CharacterSelectTimeout {
				s.InitiateDisconnect("character select timeout")
			}
		case wire.StateInWorld:
			if now.Sub(s.LastPing()) > InWorldPingTimeout {
				s.InitiateDisconnect("ping timeout")
			}
		}
	}

	for _, s := range r.snapshot() {
		if s.ShouldRemove() {
			r.Remove(s.ID)
		}
	}
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
