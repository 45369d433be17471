package recovery

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects whether the work directory is wiped after a crash
type Mode int

const (
	// Disabled leaves the work directory untouched
	Disabled Mode = iota

	// CleanupOnce wipes the work directory after one crash. The central
	// mode must then be reset by an operator.
	CleanupOnce

	// CleanupAlways wipes the work directory after every crash
	CleanupAlways
)

func (m Mode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case CleanupOnce:
		return "once"
	case CleanupAlways:
		return "always"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the numeric codes 0, 1 and 2 or the mode names
func ParseMode(s string) (Mode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "disabled", "none":
		return Disabled, nil
	case "once", "cleanuponce":
		return CleanupOnce, nil
	case "always", "cleanupalways":
		return CleanupAlways, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < int(Disabled) || n > int(CleanupAlways) {
		return Disabled, fmt.Errorf("invalid cleanup mode %q", s)
	}
	return Mode(n), nil
}
