package resources

import (
	"context"
	"errors"
	"testing"
)

func TestSessionLimit(t *testing.T) {
	sm := NewSessionManager(1)

	if err := sm.RegisterSession("a", "127.0.0.1", nil); err != nil {
		t.Fatalf("first RegisterSession: %v", err)
	}
	if err := sm.RegisterSession("b", "127.0.0.1", nil); !errors.Is(err, ErrSessionLimit) {
		t.Errorf("second RegisterSession: err = %v, want ErrSessionLimit", err)
	}
	if err := sm.RegisterSession("a", "127.0.0.1", nil); !errors.Is(err, ErrSessionActive) {
		t.Errorf("duplicate RegisterSession: err = %v, want ErrSessionActive", err)
	}

	if err := sm.UnregisterSession("a"); err != nil {
		t.Fatalf("UnregisterSession: %v", err)
	}
	if err := sm.RegisterSession("b", "127.0.0.1", nil); err != nil {
		t.Errorf("RegisterSession after release: %v", err)
	}
	if got := sm.Count(); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
}

func TestUnregisterCancelsContext(t *testing.T) {
	sm := NewSessionManager(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sm.RegisterSession("s", "", cancel); err != nil {
		t.Fatalf("RegisterSession: %v", err)
	}
	if err := sm.UnregisterSession("s"); err != nil {
		t.Fatalf("UnregisterSession: %v", err)
	}
	if ctx.Err() == nil {
		t.Errorf("session context still live after UnregisterSession")
	}
	if err := sm.UnregisterSession("s"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second UnregisterSession: err = %v, want ErrSessionNotFound", err)
	}
}

func TestShutdownCancelsAll(t *testing.T) {
	sm := NewSessionManager(2)
	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	defer cancelA()
	defer cancelB()

	sm.RegisterSession("a", "", cancelA)
	sm.RegisterSession("b", "", cancelB)
	sm.Shutdown()

	if ctxA.Err() == nil || ctxB.Err() == nil {
		t.Errorf("Shutdown left a session running")
	}
	if got := sm.Count(); got != 0 {
		t.Errorf("Count after Shutdown = %d, want 0", got)
	}
}

func TestGetSessionAndActivity(t *testing.T) {
	sm := NewSessionManager(1)
	sm.RegisterSession("s", "10.0.0.1:5000", nil)

	before, err := sm.GetSession("s")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if before.RemoteAddr != "10.0.0.1:5000" {
		t.Errorf("RemoteAddr = %q", before.RemoteAddr)
	}
	sm.UpdateActivity("s")
	after, _ := sm.GetSession("s")
	if after.LastActivity.Before(before.LastActivity) {
		t.Errorf("LastActivity went backwards")
	}
	if _, err := sm.GetSession("x"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession unknown: err = %v", err)
	}
}
