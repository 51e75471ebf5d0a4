package services_test

import (
	"testing"
	"time"

	"canedrop/internal/models"
	"canedrop/internal/services"

	"github.com/stretchr/testify/assert"
)

// 2024-01-01 is a Monday.
func at(day int, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func mondayMorningOnly() models.ShopSettings {
	s := models.DefaultShopSettings()
	s.WorkingDays = []string{"Monday"}
	s.MorningShiftEnabled = true
	s.MorningShiftStart = "08:00"
	s.MorningShiftEnd = "12:00"
	s.AfternoonShiftEnabled = false
	s.IsOpen = true
	return s
}

func TestIsShopOpen_MondayMorningScenario(t *testing.T) {
	s := mondayMorningOnly()

	assert.True(t, services.IsShopOpen(at(1, 10, 0), s), "Monday 10:00")
	assert.False(t, services.IsShopOpen(at(1, 13, 0), s), "Monday 13:00")
	assert.False(t, services.IsShopOpen(at(2, 10, 0), s), "Tuesday 10:00")
}

func TestIsShopOpen_InclusiveBoundaries(t *testing.T) {
	s := mondayMorningOnly()

	assert.True(t, services.IsShopOpen(at(1, 8, 0), s))
	assert.True(t, services.IsShopOpen(at(1, 12, 0), s))
	assert.False(t, services.IsShopOpen(at(1, 7, 59), s))
	assert.False(t, services.IsShopOpen(at(1, 12, 1), s))
}

func TestIsShopOpen_NonWorkingDayNeverOpen(t *testing.T) {
	s := mondayMorningOnly()
	s.AfternoonShiftEnabled = true

	for h := 0; h < 24; h++ {
		assert.False(t, services.IsShopOpen(at(7, h, 30), s), "Sunday %02d:30", h)
	}
}

func TestIsShopOpen_BothShiftsDisabled(t *testing.T) {
	s := models.DefaultShopSettings()
	s.MorningShiftEnabled = false
	s.AfternoonShiftEnabled = false

	for h := 0; h < 24; h++ {
		assert.False(t, services.IsShopOpen(at(1, h, 0), s), "Monday %02d:00", h)
	}
}

func TestIsShopOpen_ManualFlag(t *testing.T) {
	s := mondayMorningOnly()
	s.IsOpen = false

	assert.False(t, services.IsShopOpen(at(1, 10, 0), s))
}

func TestIsShopOpen_AfternoonShift(t *testing.T) {
	s := models.DefaultShopSettings()

	assert.False(t, services.IsShopOpen(at(1, 13, 0), s), "gap between shifts")
	assert.True(t, services.IsShopOpen(at(1, 14, 0), s))
	assert.True(t, services.IsShopOpen(at(1, 18, 0), s))
	assert.False(t, services.IsShopOpen(at(1, 18, 1), s))
}
