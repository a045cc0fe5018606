package engine

import "testing"

func TestDefault_ReturnsSameInstanceEachCall(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatalf("Default() returned different instances across calls")
	}
	if a.GetMode() != ModeIdle {
		t.Fatalf("Default() instance not initialized to IDLE, got %v", a.GetMode())
	}
}
