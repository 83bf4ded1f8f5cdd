package aesprovider

import "testing"

// Disable/Available are the deterministic knob spec.md §6 calls for; they
// must work even in an environment with no discoverable libcrypto, since
// CI and sandboxed test runs are exactly that environment.
func TestDisableForcesUnavailable(t *testing.T) {
	Disable(true)
	defer Disable(false)

	if Available() {
		t.Fatalf("Available() = true after Disable(true)")
	}
}

func TestDisableIsReversible(t *testing.T) {
	Disable(false)
	before := Available()

	Disable(true)
	if Available() {
		t.Fatalf("Available() = true while disabled")
	}
	Disable(false)

	// Available() may still be false here if no provider was discovered on
	// this host; the point is that Disable no longer forces it false.
	if got := Available(); got != before {
		t.Fatalf("Available() = %v after Disable(false), want %v", got, before)
	}
}

func TestUnloadWithoutLoadIsSafe(t *testing.T) {
	Unload()
	Unload()
}
