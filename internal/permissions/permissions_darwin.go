//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework ApplicationServices -framework Cocoa
#import <ApplicationServices/ApplicationServices.h>
#import <Cocoa/Cocoa.h>

int checkAccessibilityPermission(int prompt) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

import (
	"fmt"
	"os/exec"
)

const accessibilitySettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"

// Accessibility gates event taps and synthetic input behind the macOS
// Privacy & Security > Accessibility grant
type Accessibility struct{}

func New() Accessibility {
	return Accessibility{}
}

// Trusted checks the grant without showing a prompt
func (Accessibility) Trusted() bool {
	return C.checkAccessibilityPermission(0) == 1
}

// Request shows the system accessibility prompt
func (Accessibility) Request() {
	C.checkAccessibilityPermission(1)
}

// OpenSettings opens the Accessibility pane of System Settings
func (Accessibility) OpenSettings() error {
	if err := exec.Command("open", accessibilitySettingsURL).Run(); err != nil {
		return fmt.Errorf("failed to open accessibility settings: %w", err)
	}
	return nil
}

// EnsurePermissions checks the accessibility grant, prompting if missing
func EnsurePermissions() error {
	a := New()
	if a.Trusted() {
		return nil
	}

	fmt.Println("⚠️  Accessibility permission required to detect and simulate paste")
	fmt.Println("   Go to: System Settings → Privacy & Security → Accessibility")
	a.Request()
	return fmt.Errorf("accessibility permission not granted")
}
