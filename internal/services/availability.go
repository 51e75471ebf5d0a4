package services

import (
	"time"

	"canedrop/internal/models"
)

// IsShopOpen reports whether the shop is delivering at now.
// now must already be in the shop's time zone. The shop is open when the manual
// flag is on, the weekday is a working day and the time of day falls inside an
// enabled shift window. Boundaries are inclusive and windows never wrap midnight.
func IsShopOpen(now time.Time, settings models.ShopSettings) bool {
	if !settings.IsOpen {
		return false
	}
	if !isWorkingDay(now.Weekday(), settings.WorkingDays) {
		return false
	}

	clock := now.Format("15:04")
	for _, shift := range settings.Shifts() {
		if shift.Enabled && inWindow(clock, shift.Start, shift.End) {
			return true
		}
	}
	return false
}

func isWorkingDay(day time.Weekday, workingDays []string) bool {
	name := day.String()
	for _, d := range workingDays {
		if d == name {
			return true
		}
	}
	return false
}

// inWindow compares zero-padded "HH:MM" strings lexicographically.
func inWindow(clock, start, end string) bool {
	return clock >= start && clock <= end
}
