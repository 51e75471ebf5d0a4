package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canedrop/internal/logger"
	"canedrop/internal/models"
	"canedrop/internal/repositories"

	"go.uber.org/zap"
)

// ShopService owns the shop settings document and the availability it implies.
type ShopService struct {
	store repositories.SettingsStore
	loc   *time.Location
	now   func() time.Time

	enforceHours bool
}

// NewShopService creates a ShopService evaluating hours in loc.
func NewShopService(store repositories.SettingsStore, loc *time.Location) *ShopService {
	if loc == nil {
		loc = time.UTC
	}
	return &ShopService{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the clock used by Status.
func (s *ShopService) WithClock(now func() time.Time) *ShopService {
	s.now = now
	return s
}

// WithEnforcedHours makes Status report canPlaceOrder=false while the shop is closed.
func (s *ShopService) WithEnforcedHours(enforce bool) *ShopService {
	s.enforceHours = enforce
	return s
}

// Location is the time zone the shop works in.
func (s *ShopService) Location() *time.Location { return s.loc }

// Now is the current time in the shop's time zone.
func (s *ShopService) Now() time.Time { return s.now().In(s.loc) }

// EnsureDefaults seeds the settings document on a fresh installation.
func (s *ShopService) EnsureDefaults(ctx context.Context) error {
	_, err := s.store.Load(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to load shop settings: %w", err)
	}

	defaults := models.DefaultShopSettings()
	defaults.UpdatedAt = s.now()
	if err := s.store.Save(ctx, &defaults); err != nil {
		return fmt.Errorf("failed to seed shop settings: %w", err)
	}
	logger.FromCtx(ctx).Info("seeded default shop settings")
	return nil
}

// GetSettings returns the current settings.
func (s *ShopService) GetSettings(ctx context.Context) (*models.ShopSettings, error) {
	settings, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("shop settings: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load shop settings: %w", err)
	}
	return settings, nil
}

// ShopSettingsPatch is a partial update; nil fields are left unchanged.
type ShopSettingsPatch struct {
	CanePrice        *int64 `json:"canePrice" validate:"omitempty,gt=0"`
	DeliveryFee      *int64 `json:"deliveryFee" validate:"omitempty,gte=0"`
	MinOrderQuantity *int   `json:"minOrderQuantity" validate:"omitempty,gte=1"`
	IsOpen           *bool  `json:"isOpen"`

	MorningShiftEnabled *bool   `json:"morningShiftEnabled"`
	MorningShiftStart   *string `json:"morningShiftStart" validate:"omitempty,hhmm"`
	MorningShiftEnd     *string `json:"morningShiftEnd" validate:"omitempty,hhmm"`

	AfternoonShiftEnabled *bool   `json:"afternoonShiftEnabled"`
	AfternoonShiftStart   *string `json:"afternoonShiftStart" validate:"omitempty,hhmm"`
	AfternoonShiftEnd     *string `json:"afternoonShiftEnd" validate:"omitempty,hhmm"`

	OpeningTime *string `json:"openingTime" validate:"omitempty,hhmm"`
	ClosingTime *string `json:"closingTime" validate:"omitempty,hhmm"`

	WorkingDays   *[]string `json:"workingDays" validate:"omitempty,min=1,dive,weekday"`
	ClosedMessage *string   `json:"closedMessage" validate:"omitempty,min=10,max=500"`
}

// UpdateSettings merges patch into the stored settings. Owner only.
func (s *ShopService) UpdateSettings(ctx context.Context, principal models.Principal, patch ShopSettingsPatch) (*models.ShopSettings, error) {
	if err := authorize(principal, models.CapManageShopSettings); err != nil {
		return nil, err
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	current, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	merged := patch.apply(*current)
	if err := checkWindows(merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.now()

	if err := s.store.Save(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to save shop settings: %w", err)
	}
	logger.FromCtx(ctx).Info("shop settings updated",
		zap.String("user_id", principal.UserID),
		zap.Int64("cane_price", merged.CanePrice),
		zap.Bool("is_open", merged.IsOpen),
	)
	return &merged, nil
}

func (p ShopSettingsPatch) apply(s models.ShopSettings) models.ShopSettings {
	if p.CanePrice != nil {
		s.CanePrice = *p.CanePrice
	}
	if p.DeliveryFee != nil {
		s.DeliveryFee = *p.DeliveryFee
	}
	if p.MinOrderQuantity != nil {
		s.MinOrderQuantity = *p.MinOrderQuantity
	}
	if p.IsOpen != nil {
		s.IsOpen = *p.IsOpen
	}
	if p.MorningShiftEnabled != nil {
		s.MorningShiftEnabled = *p.MorningShiftEnabled
	}
	if p.MorningShiftStart != nil {
		s.MorningShiftStart = *p.MorningShiftStart
	}
	if p.MorningShiftEnd != nil {
		s.MorningShiftEnd = *p.MorningShiftEnd
	}
	if p.AfternoonShiftEnabled != nil {
		s.AfternoonShiftEnabled = *p.AfternoonShiftEnabled
	}
	if p.AfternoonShiftStart != nil {
		s.AfternoonShiftStart = *p.AfternoonShiftStart
	}
	if p.AfternoonShiftEnd != nil {
		s.AfternoonShiftEnd = *p.AfternoonShiftEnd
	}
	if p.OpeningTime != nil {
		s.OpeningTime = *p.OpeningTime
	}
	if p.ClosingTime != nil {
		s.ClosingTime = *p.ClosingTime
	}
	if p.WorkingDays != nil {
		s.WorkingDays = append([]string(nil), (*p.WorkingDays)...)
	}
	if p.ClosedMessage != nil {
		s.ClosedMessage = *p.ClosedMessage
	}
	return s
}

// checkWindows rejects windows that end before they start. Midnight wraparound is not supported.
func checkWindows(s models.ShopSettings) error {
	fields := map[string]string{}
	for _, w := range s.Shifts() {
		if w.Start > w.End {
			fields[w.Name+"ShiftEnd"] = "must not be earlier than " + w.Name + "ShiftStart"
		}
	}
	if s.OpeningTime > s.ClosingTime {
		fields["closingTime"] = "must not be earlier than openingTime"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Status evaluates availability at the current time.
func (s *ShopService) Status(ctx context.Context) (*models.ShopStatus, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return s.statusAt(s.Now(), *settings), nil
}

func (s *ShopService) statusAt(now time.Time, settings models.ShopSettings) *models.ShopStatus {
	open := IsShopOpen(now, settings)
	status := &models.ShopStatus{
		Open:          open,
		CanPlaceOrder: open || !s.enforceHours,
		Day:           now.Weekday().String(),
		Time:          now.Format("15:04"),
	}
	if !open {
		status.Message = settings.ClosedMessage
	}
	return status
}
