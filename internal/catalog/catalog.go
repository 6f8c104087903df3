// Package catalog defines the clinic's fixed daily grid of bookable time
// slots. The grid is static: 30-minute slots from 08:00 through 11:30 and
// 13:00 through 16:30 (the 12:00 hour is the lunch gap).
package catalog

import (
	"strings"
	"time"
)

// Slot is a bookable time-of-day token in canonical "HH:MM" form.
type Slot string

// slots is the authoritative ordered grid. Order matches clinic hours.
var slots = []Slot{
	"08:00", "08:30",
	"09:00", "09:30",
	"10:00", "10:30",
	"11:00", "11:30",
	"13:00", "13:30",
	"14:00", "14:30",
	"15:00", "15:30",
	"16:00", "16:30",
}

var index = func() map[Slot]int {
	m := make(map[Slot]int, len(slots))
	for i, s := range slots {
		m[s] = i
	}
	return m
}()

// All returns the full ordered grid. The returned slice is a copy.
func All() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// IsValid reports whether tok (already canonical) is a member of the grid.
func IsValid(tok Slot) bool {
	_, ok := index[tok]
	return ok
}

// Index returns the slot's position in clinic-hours order, or -1 if tok is
// not a grid member. Used for ordering only, never for arithmetic.
func Index(tok Slot) int {
	i, ok := index[tok]
	if !ok {
		return -1
	}
	return i
}

// Normalize maps either historical encoding to the canonical form:
//
//	"H08_00" -> "08:00"
//	"08:00"  -> "08:00"
//
// Normalization never validates membership; pass the result to IsValid.
func Normalize(raw string) Slot {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "H") || strings.HasPrefix(s, "h") {
		s = s[1:]
	}
	s = strings.ReplaceAll(s, "_", ":")
	return Slot(s)
}

// TimeOfDay returns the slot's hour and minute. ok is false for tokens
// outside the grid or not in "HH:MM" form.
func TimeOfDay(tok Slot) (hour, min int, ok bool) {
	if !IsValid(tok) {
		return 0, 0, false
	}
	t, err := time.Parse("15:04", string(tok))
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
