package alert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseClock converts an "HH:MM" wall-clock bound to minutes past midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("malformed clock %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("malformed clock %q", s)
	}
	return hour*60 + minute, nil
}

// inWindow reports whether now falls inside the daily [start, end) window.
// A window whose start is after its end wraps past midnight: 22:00-07:00
// covers 23:30 and 03:00 but not 08:00.
func inWindow(now time.Time, start string, end string) (bool, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return false, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return false, err
	}

	m := now.Hour()*60 + now.Minute()
	if startMin <= endMin {
		return m >= startMin && m < endMin, nil
	}
	return m >= startMin || m < endMin, nil
}

// untilNext returns how long from now until the next occurrence of the given
// "HH:MM" wall-clock time, at least one minute out.
func untilNext(now time.Time, start string) (time.Duration, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return 0, err
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), startMin/60, startMin%60, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	d := next.Sub(now)
	if d < time.Minute {
		d = time.Minute
	}
	return d, nil
}
