package helpers

import (
	"errors"
	"strings"
)

// AfterSeparator returns the trimmed text after the first separator,
// e.g. "Item location: Germany" -> "Germany".
func AfterSeparator(target string, separate string) (string, error) {
	parts := strings.SplitN(target, separate, 2)
	if len(parts) < 2 {
		return "", errors.New("separator not found")
	}
	return strings.TrimSpace(parts[1]), nil
}

// FirstWord returns the first whitespace-separated word of target
func FirstWord(target string) string {
	fields := strings.Fields(target)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
