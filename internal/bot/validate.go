package bot

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+\d{6,15}$`)
)

// validFullName requires at least two space-separated name parts.
func validFullName(s string) bool {
	return len(strings.Fields(strings.TrimSpace(s))) >= 2
}

func validEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// validPhone accepts international form: a plus sign followed by digits.
func validPhone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}

func parseSlots(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseDuration(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return n, true
}
