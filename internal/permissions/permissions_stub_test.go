//go:build !darwin

package permissions

import "testing"

func TestAccessibilityAlwaysTrusted(t *testing.T) {
	a := New()
	if !a.Trusted() {
		t.Fatal("expected trusted outside macOS")
	}
	if err := a.OpenSettings(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := EnsurePermissions(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
