//go:build !darwin

package permissions

// Accessibility is always granted outside macOS
type Accessibility struct{}

func New() Accessibility {
	return Accessibility{}
}

func (Accessibility) Trusted() bool { return true }

func (Accessibility) Request() {}

func (Accessibility) OpenSettings() error { return nil }

// EnsurePermissions is a no-op on non-macOS platforms.
func EnsurePermissions() error {
	return nil
}
