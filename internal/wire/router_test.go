package wire

import (
	"testing"

	"go.uber.org/zap"
)

func frameWithOpcode(opcode uint16) []byte {
	w := NewWriter(opcode)
	return w.Bytes()
}

func TestDispatchUnknownOpcodeIsDropped(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	if err := rt.Dispatch(nil, StateConnected, frameWithOpcode(0x9999)); err != nil {
		t.Fatalf("expected nil error for unknown opcode, got %v", err)
	}
}

func TestDispatchRejectsWrongStateExactMatch(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	called := false
	rt.Register(0x01, "login", StateConnected, false, func(sess any, r *Reader) { called = true })

	if err := rt.Dispatch(nil, StateAuthenticated, frameWithOpcode(0x01)); err == nil {
		t.Fatal("expected error for state mismatch, got nil")
	}
	if called {
		t.Fatal("handler must not run when state does not match")
	}
}

func TestDispatchAllowsHigherStates(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	called := false
	rt.Register(0x02, "chat", StateAuthenticated, true, func(sess any, r *Reader) { called = true })

	if err := rt.Dispatch(nil, StateInWorld, frameWithOpcode(0x02)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("handler should run when session state exceeds the required minimum")
	}
}

func TestDispatchRejectsLowerStateEvenWithAllowHigherStates(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	called := false
	rt.Register(0x02, "chat", StateAuthenticated, true, func(sess any, r *Reader) { called = true })

	if err := rt.Dispatch(nil, StateConnected, frameWithOpcode(0x02)); err == nil {
		t.Fatal("expected error for state below the required minimum")
	}
	if called {
		t.Fatal("handler must not run below the required minimum state")
	}
}

func TestDispatchDropsFramesForDisconnectingSessions(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	called := false
	rt.Register(0x03, "move", StateInWorld, true, func(sess any, r *Reader) { called = true })

	if err := rt.Dispatch(nil, StateDisconnecting, frameWithOpcode(0x03)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if called {
		t.Fatal("handler must not run once the session is disconnecting")
	}
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	rt.Register(0x04, "boom", StateConnected, false, func(sess any, r *Reader) {
		panic("handler exploded")
	})

	err := rt.Dispatch(nil, StateConnected, frameWithOpcode(0x04))
	if err == nil {
		t.Fatal("expected dispatch to surface the recovered panic as an error")
	}
}

func TestDispatchRejectsShortFrame(t *testing.T) {
	rt := NewRouter(zap.NewNop())
	if err := rt.Dispatch(nil, StateConnected, []byte{0x01}); err == nil {
		t.Fatal("expected error for a frame too short to contain an opcode")
	}
}
