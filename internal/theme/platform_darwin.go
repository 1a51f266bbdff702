//go:build darwin

package theme

import (
	"errors"
	"os/exec"
)

// PlatformDark reports whether macOS is in dark mode.
func PlatformDark() (dark, ok bool) {
	err := exec.Command("defaults", "read", "-g", "AppleInterfaceStyle").Run()
	if err == nil {
		return true, true
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		// the key is absent in light mode
		return false, true
	}
	return false, false
}
