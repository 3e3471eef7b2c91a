package wire

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState is a session's lifecycle phase:
// connected -> authenticated -> in-world -> disconnecting, with only the
// single permitted back-transition in-world -> authenticated.
type SessionState int

const (
	// StateDisconnecting has the lowest numeric level (0) so it never
	// satisfies an "allow-higher-states" gate once a session starts closing.
	StateDisconnecting SessionState = iota
	StateConnected
	StateAuthenticated
	StateInWorld
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateInWorld:
		return "in-world"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// HandlerFunc is a packet handler. The session is passed as an opaque
// interface to keep this package free of an import on the session package
// (which itself depends on wire for framing/opcodes).
type HandlerFunc func(sess any, r *Reader)

type route struct {
	name             string
	fn               HandlerFunc
	required         SessionState
	allowHigherStates bool
}

// Router maps opcodes to handlers with lifecycle-state gating.
type Router struct {
	routes map[uint16]*route
	log    *zap.Logger
}

func NewRouter(log *zap.Logger) *Router {
	return &Router{routes: make(map[uint16]*route), log: log}
}

// Register binds an opcode to a handler. If allowHigherStates is true, the
// session's state level must be >= required; otherwise it must match exactly.
func (rt *Router) Register(opcode uint16, name string, required SessionState, allowHigherStates bool, fn HandlerFunc) {
	rt.routes[opcode] = &route{name: name, fn: fn, required: required, allowHigherStates: allowHigherStates}
}

// Dispatch resolves the opcode in frame, checks the session's state against
// the handler's gate, and invokes it inside a panic-recovery boundary so a
// single bad handler never takes down the world loop.
func (rt *Router) Dispatch(sess any, state SessionState, frame []byte) error {
	if len(frame) < 2 {
		return fmt.Errorf("frame too short for opcode")
	}
	if state == StateDisconnecting {
		rt.log.Debug("dropped frame for disconnecting session")
		return nil
	}

	r := NewReader(frame)
	opcode := r.Opcode()

	route, ok := rt.routes[opcode]
	if !ok {
		rt.log.Debug("unknown opcode", zap.Uint16("opcode", opcode))
		return nil
	}

	if route.allowHigherStates {
		if state < route.required {
			rt.log.Warn("opcode not allowed in state",
				zap.String("handler", route.name), zap.String("state", state.String()))
			return fmt.Errorf("opcode 0x%04x (%s) requires state >= %s, got %s", opcode, route.name, route.required, state)
		}
	} else if state != route.required {
		rt.log.Warn("opcode not allowed in state",
			zap.String("handler", route.name), zap.String("state", state.String()))
		return fmt.Errorf("opcode 0x%04x (%s) requires state %s, got %s", opcode, route.name, route.required, state)
	}

	return rt.safeCall(route, sess, r, opcode)
}

// safeCall executes a handler with panic recovery so a single malformed or
// buggy handler invocation is isolated from the main loop.
func (rt *Router) safeCall(route *route, sess any, r *Reader, opcode uint16) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.log.Error("handler panic recovered",
				zap.String("handler", route.name), zap.Uint16("opcode", opcode), zap.Any("panic", rec))
			err = fmt.Errorf("handler %s panicked: %v", route.name, rec)
		}
	}()
	route.fn(sess, r)
	return nil
}
