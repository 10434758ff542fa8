package manager

import (
	"fmt"
	"strings"
)

// ANSI styling for menu output. NoColor switches every helper to plain
// text, for dumb terminals or piped output.
var NoColor bool

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiGreen = "\033[0;32m"
	ansiRed   = "\033[0;31m"
	ansiCyan  = "\033[0;36m"
)

func paint(code, s string) string {
	if NoColor {
		return s
	}
	return code + s + ansiReset
}

func header(title string) string {
	rule := strings.Repeat("=", 60)
	return fmt.Sprintf("\n%s\n%s\n%s", rule, paint(ansiBold, title), rule)
}

func okf(format string, v ...interface{}) string {
	return paint(ansiGreen, "✓ ") + fmt.Sprintf(format, v...)
}

func failf(format string, v ...interface{}) string {
	return paint(ansiRed, "ERROR: ") + fmt.Sprintf(format, v...)
}

func warnf(format string, v ...interface{}) string {
	return paint(ansiCyan, "NOTE: ") + fmt.Sprintf(format, v...)
}
