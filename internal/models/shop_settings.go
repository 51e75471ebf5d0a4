package models

import "time"

// ShopSettings is the single configuration document of the shop.
// Times of day are zero-padded 24-hour "HH:MM" strings.
type ShopSettings struct {
	CanePrice        int64 `json:"canePrice"`
	DeliveryFee      int64 `json:"deliveryFee"`
	MinOrderQuantity int   `json:"minOrderQuantity"`
	IsOpen           bool  `json:"isOpen"`

	MorningShiftEnabled bool   `json:"morningShiftEnabled"`
	MorningShiftStart   string `json:"morningShiftStart"`
	MorningShiftEnd     string `json:"morningShiftEnd"`

	AfternoonShiftEnabled bool   `json:"afternoonShiftEnabled"`
	AfternoonShiftStart   string `json:"afternoonShiftStart"`
	AfternoonShiftEnd     string `json:"afternoonShiftEnd"`

	// Legacy single window, still shown by older clients.
	OpeningTime string `json:"openingTime"`
	ClosingTime string `json:"closingTime"`

	WorkingDays   []string  `json:"workingDays"`
	ClosedMessage string    `json:"closedMessage"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ShiftWindow is one half-day delivery window.
type ShiftWindow struct {
	Name    string
	Enabled bool
	Start   string
	End     string
}

// Shifts returns the morning and afternoon windows in that order.
func (s ShopSettings) Shifts() []ShiftWindow {
	return []ShiftWindow{
		{Name: "morning", Enabled: s.MorningShiftEnabled, Start: s.MorningShiftStart, End: s.MorningShiftEnd},
		{Name: "afternoon", Enabled: s.AfternoonShiftEnabled, Start: s.AfternoonShiftStart, End: s.AfternoonShiftEnd},
	}
}

// DefaultShopSettings is what a fresh installation starts with.
func DefaultShopSettings() ShopSettings {
	return ShopSettings{
		CanePrice:             50,
		DeliveryFee:           0,
		MinOrderQuantity:      1,
		IsOpen:                true,
		MorningShiftEnabled:   true,
		MorningShiftStart:     "08:00",
		MorningShiftEnd:       "12:00",
		AfternoonShiftEnabled: true,
		AfternoonShiftStart:   "14:00",
		AfternoonShiftEnd:     "18:00",
		OpeningTime:           "08:00",
		ClosingTime:           "18:00",
		WorkingDays:           []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		ClosedMessage:         "We're sorry, but the shop is currently closed for deliveries. Your order will be processed when we reopen.",
	}
}

// ShopStatus is the evaluated availability shown to customers.
type ShopStatus struct {
	Open          bool   `json:"open"`
	CanPlaceOrder bool   `json:"canPlaceOrder"`
	Day           string `json:"day"`
	Time          string `json:"time"`
	Message       string `json:"message,omitempty"`
}
