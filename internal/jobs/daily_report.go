package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"canedrop/internal/events"
	"canedrop/internal/logger"
	"canedrop/internal/models"
	"canedrop/pkg/rabbitmq"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SummarySource computes the order summary for the shop-local day containing at.
type SummarySource interface {
	SummaryAt(ctx context.Context, at time.Time) (*models.OrderSummary, error)
}

// Publisher sends the report to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// DailyReportTask publishes the end-of-day order summary on a cron schedule.
type DailyReportTask struct {
	orders    SummarySource
	publisher Publisher
	loc       *time.Location
	schedule  string
	cron      *cron.Cron
	now       func() time.Time
}

// NewDailyReportTask creates the task. schedule is a six-field cron expression
// (with seconds) evaluated in loc.
func NewDailyReportTask(orders SummarySource, publisher Publisher, schedule string, loc *time.Location) *DailyReportTask {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyReportTask{
		orders:    orders,
		publisher: publisher,
		loc:       loc,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		now:       time.Now,
	}
}

// Start registers the schedule and starts the cron runner. An empty schedule disables the task.
func (t *DailyReportTask) Start() error {
	if strings.TrimSpace(t.schedule) == "" {
		logger.L().Info("daily report disabled")
		return nil
	}
	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := t.Run(ctx); err != nil {
			logger.L().Error("daily report failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid daily report schedule %q: %w", t.schedule, err)
	}

	t.cron.Start()
	logger.L().Info("daily report scheduled", zap.String("schedule", t.schedule), zap.String("tz", t.loc.String()))
	return nil
}

// Stop waits for a running report to finish.
func (t *DailyReportTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

// Run builds and publishes one report for today.
func (t *DailyReportTask) Run(ctx context.Context) error {
	now := t.now().In(t.loc)
	summary, err := t.orders.SummaryAt(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to compute summary: %w", err)
	}

	report := events.DailyReport{
		Date:         now.Format("2006-01-02"),
		OrderSummary: *summary,
		GeneratedAt:  now,
	}
	logger.L().Info("daily report",
		zap.String("date", report.Date),
		zap.Int("pending", summary.PendingCount),
		zap.Int("delivered", summary.DeliveredToday),
		zap.Int64("revenue", summary.RevenueToday),
	)

	if t.publisher == nil {
		return nil
	}
	if err := t.publisher.Publish(ctx, rabbitmq.KeyDailyReport, report); err != nil {
		return fmt.Errorf("failed to publish daily report: %w", err)
	}
	return nil
}
