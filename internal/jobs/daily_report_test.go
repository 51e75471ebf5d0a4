package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"canedrop/internal/events"
	"canedrop/internal/models"
	"canedrop/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSummary struct{ mock.Mock }

func (m *mockSummary) SummaryAt(ctx context.Context, at time.Time) (*models.OrderSummary, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderSummary), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

func TestDailyReportTask_Run(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Jan 1 is already Jan 2 in IST
	now := time.Date(2024, time.January, 1, 20, 0, 0, 0, time.UTC)

	summary := &models.OrderSummary{PendingCount: 2, DeliveredToday: 5, RevenueToday: 250}
	src := new(mockSummary)
	src.On("SummaryAt", mock.Anything, mock.AnythingOfType("time.Time")).Return(summary, nil).Once()
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, rabbitmq.KeyDailyReport, mock.MatchedBy(func(r events.DailyReport) bool {
		return r.Date == "2024-01-02" && r.RevenueToday == 250 && r.DeliveredToday == 5
	})).Return(nil).Once()

	task := NewDailyReportTask(src, pub, "0 0 21 * * *", loc)
	task.now = func() time.Time { return now }

	require.NoError(t, task.Run(context.Background()))
	src.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestDailyReportTask_RunErrors(t *testing.T) {
	src := new(mockSummary)
	src.On("SummaryAt", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
	task := NewDailyReportTask(src, nil, "0 0 21 * * *", nil)
	assert.ErrorContains(t, task.Run(context.Background()), "db down")

	src.On("SummaryAt", mock.Anything, mock.Anything).Return(&models.OrderSummary{}, nil).Once()
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	task = NewDailyReportTask(src, pub, "0 0 21 * * *", nil)
	assert.ErrorContains(t, task.Run(context.Background()), "broker down")
}

func TestDailyReportTask_StartRejectsBadSchedule(t *testing.T) {
	task := NewDailyReportTask(new(mockSummary), nil, "every evening", time.UTC)
	assert.Error(t, task.Start())

	task = NewDailyReportTask(new(mockSummary), nil, "0 0 21 * * *", time.UTC)
	require.NoError(t, task.Start())
	task.Stop()
}

func TestDailyReportTask_EmptyScheduleDisables(t *testing.T) {
	src := new(mockSummary)
	task := NewDailyReportTask(src, nil, "", time.UTC)
	require.NoError(t, task.Start())
	assert.Empty(t, task.cron.Entries())
	task.Stop()
	src.AssertNotCalled(t, "SummaryAt", mock.Anything, mock.Anything)
}
