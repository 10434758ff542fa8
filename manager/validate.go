package manager

import "strings"

// Input limits shared by the menu and the config layer.
const (
	MinPasswordLen   = 8
	MaxPasswordLen   = 64
	MaxServerNameLen = 64
	maxInputLen      = 128
)

// ValidPort reports whether p is usable as a non-privileged network port.
func ValidPort(p int) bool {
	return p >= 1024 && p <= 65535
}

// ValidModID reports whether id looks like a CurseForge mod ID (digits
// only).
func ValidModID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StrongPassword reports whether pw meets the RCON password requirements.
func StrongPassword(pw string) bool {
	if len(pw) < MinPasswordLen || len(pw) > MaxPasswordLen {
		return false
	}
	return strings.TrimSpace(pw) != ""
}

// Sanitize strips shell metacharacters from operator input and caps its
// length. Values end up in INI files and on server command lines, so
// anything with quoting or redirection potential is dropped outright.
func Sanitize(value string, max int) string {
	if max <= 0 || max > maxInputLen {
		max = maxInputLen
	}
	value = strings.Map(func(r rune) rune {
		switch r {
		case '&', '|', ';', '$', '`', '\n', '\r', '<', '>', '"', '\'':
			return -1
		}
		return r
	}, value)
	value = strings.TrimSpace(value)
	if len(value) > max {
		value = value[:max]
	}
	return value
}
