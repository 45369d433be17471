package settings

import (
	"fmt"
	"strings"
	"time"
)

// MaintenanceWindow is a recurring period during which central services are
// expected to be down. Errors raised inside the window are not posted to the
// control service.
type MaintenanceWindow struct {
	// Day restricts the window to one weekday; nil means every day
	Day *time.Weekday

	// Start and End are minutes after midnight. End before Start wraps past midnight.
	Start int
	End   int
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseMaintenanceWindow parses "[Day ]HH:MM-HH:MM", e.g. "Thu 18:00-21:00".
// An empty string yields nil.
func ParseMaintenanceWindow(s string) (*MaintenanceWindow, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	w := &MaintenanceWindow{}
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
	case 2:
		name := strings.ToLower(fields[0])
		if len(name) > 3 {
			name = name[:3]
		}
		day, ok := weekdays[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", fields[0])
		}
		w.Day = &day
	default:
		return nil, fmt.Errorf("invalid maintenance window %q", s)
	}

	start, end, ok := strings.Cut(fields[len(fields)-1], "-")
	if !ok {
		return nil, fmt.Errorf("invalid maintenance window %q: missing range", s)
	}
	var err error
	if w.Start, err = parseClock(start); err != nil {
		return nil, err
	}
	if w.End, err = parseClock(end); err != nil {
		return nil, err
	}
	return w, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains reports whether t falls inside the window
func (w *MaintenanceWindow) Contains(t time.Time) bool {
	if w == nil {
		return false
	}
	minute := t.Hour()*60 + t.Minute()

	if w.Start <= w.End {
		if w.Day != nil && t.Weekday() != *w.Day {
			return false
		}
		return minute >= w.Start && minute < w.End
	}

	// Wraps past midnight: the part after midnight belongs to the next day
	if minute >= w.Start {
		return w.Day == nil || t.Weekday() == *w.Day
	}
	if minute < w.End {
		return w.Day == nil || t.Weekday() == (*w.Day+1)%7
	}
	return false
}
