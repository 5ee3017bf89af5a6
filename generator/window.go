package generator

import (
	"fmt"
	"strconv"
	"strings"

	"gridiron/models"
)

// ParseClock converts a play timestamp to seconds. Both "MM:SS" and plain
// seconds are accepted.
func ParseClock(timestamp string) (int, error) {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	minutes, seconds, found := strings.Cut(timestamp, ":")
	if !found {
		value, err := strconv.ParseFloat(timestamp, 64)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", timestamp)
		}
		return int(value), nil
	}

	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid minutes in timestamp %q", timestamp)
	}
	s, err := strconv.Atoi(seconds)
	if err != nil || s < 0 || s >= 60 {
		return 0, fmt.Errorf("invalid seconds in timestamp %q", timestamp)
	}
	return m*60 + s, nil
}

// SelectWindow finds the first play at or before clock and returns up to
// size plays that follow it. Plays are ordered most recent first, so the
// window holds what happened after the anchor in game time. Plays with an
// unreadable timestamp never anchor a window.
func SelectWindow(plays []models.Play, clock, size int) []models.Play {
	if size <= 0 {
		return nil
	}

	for i, play := range plays {
		at, err := ParseClock(play.Timestamp)
		if err != nil || at > clock {
			continue
		}

		end := i + 1 + size
		if end > len(plays) {
			end = len(plays)
		}
		return plays[i+1 : end]
	}
	return nil
}
