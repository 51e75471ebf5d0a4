package events

import (
	"encoding/json"
	"fmt"

	"canedrop/internal/logger"
	"canedrop/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// NotifierQueue is the durable queue the notifier consumes from.
const NotifierQueue = "canedrop.notifier"

// NotifierKeys are the routing keys the notifier is bound to.
var NotifierKeys = []string{rabbitmq.KeyOrderCreated, rabbitmq.KeyOrderDelivered, rabbitmq.KeyDailyReport}

// Notifier turns shop events into log lines for the people running the shop.
type Notifier struct {
	log *zap.Logger
}

// NewNotifier creates a Notifier writing to log, or to the global logger when log is nil.
func NewNotifier(log *zap.Logger) *Notifier {
	if log == nil {
		log = logger.L()
	}
	return &Notifier{log: log.Named("notifier")}
}

// Handle processes one delivery. An error makes the consumer drop the message.
func (n *Notifier) Handle(d amqp.Delivery) error {
	switch d.RoutingKey {
	case rabbitmq.KeyOrderCreated, rabbitmq.KeyOrderDelivered:
		var ev OrderEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return fmt.Errorf("failed to decode %s: %w", d.RoutingKey, err)
		}
		n.log.Info(d.RoutingKey,
			zap.String("order_id", ev.OrderID),
			zap.String("customer_id", ev.CustomerID),
			zap.Int("quantity", ev.Quantity),
			zap.Int64("amount", ev.Amount),
			zap.String("payment_method", string(ev.PaymentMethod)),
			zap.String("status", string(ev.Status)),
		)
	case rabbitmq.KeyDailyReport:
		var rep DailyReport
		if err := json.Unmarshal(d.Body, &rep); err != nil {
			return fmt.Errorf("failed to decode %s: %w", d.RoutingKey, err)
		}
		n.log.Info(d.RoutingKey,
			zap.String("date", rep.Date),
			zap.Int("pending", rep.PendingCount),
			zap.Int("delivered", rep.DeliveredToday),
			zap.Int64("revenue", rep.RevenueToday),
		)
	default:
		n.log.Warn("unexpected routing key", zap.String("routing_key", d.RoutingKey))
	}
	return nil
}
