// Package schedule lays out the half-hour slots an order can be booked for.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSlotUnavailable = errors.New("schedule: no such delivery slot")
	ErrInPast          = errors.New("schedule: delivery time is in the past")
)

const (
	firstSlot    = 9 * time.Hour
	lastSlot     = 21 * time.Hour
	slotInterval = 30 * time.Minute
)

// Slots returns every bookable time of day as "HH:MM", 09:00 through 21:00.
func Slots() []string {
	var slots []string
	for d := firstSlot; d <= lastSlot; d += slotInterval {
		slots = append(slots, formatOffset(d))
	}
	return slots
}

func formatOffset(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func validSlot(slot string) bool {
	for _, s := range Slots() {
		if s == slot {
			return true
		}
	}
	return false
}

// At combines a calendar day and a slot in the day's location. Days before
// today are rejected, as is a slot on today that has already started.
func At(day time.Time, slot string, now time.Time) (time.Time, error) {
	if !validSlot(slot) {
		return time.Time{}, ErrSlotUnavailable
	}

	var hour, minute int
	if _, err := fmt.Sscanf(slot, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, ErrSlotUnavailable
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	if !at.After(now) {
		return time.Time{}, ErrInPast
	}
	return at, nil
}

// Available lists the slots still open on day as seen at now.
func Available(day, now time.Time) []string {
	var open []string
	for _, slot := range Slots() {
		if _, err := At(day, slot, now); err == nil {
			open = append(open, slot)
		}
	}
	return open
}
