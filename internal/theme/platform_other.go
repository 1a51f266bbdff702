//go:build !darwin && !windows && !linux

package theme

// PlatformDark has no source of truth on this platform.
func PlatformDark() (dark, ok bool) { return false, false }
