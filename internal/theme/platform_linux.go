//go:build linux

package theme

import (
	"os/exec"
	"strings"
)

// PlatformDark asks the desktop settings daemon for the preferred color
// scheme.
func PlatformDark() (dark, ok bool) {
	out, err := exec.Command("gsettings", "get", "org.gnome.desktop.interface", "color-scheme").Output()
	if err != nil {
		return false, false
	}
	return parseColorScheme(string(out))
}

func parseColorScheme(s string) (dark, ok bool) {
	s = strings.Trim(strings.TrimSpace(s), "'")
	switch s {
	case "prefer-dark":
		return true, true
	case "prefer-light", "default":
		return false, true
	}
	return false, false
}
