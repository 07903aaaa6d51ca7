package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pasalmart-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	stockChannel        = "events:stock"
	orderChannelPattern = "events:orders:%d"

	publishTimeout = 2 * time.Second
)

type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier publishes events over redis pub/sub. Subscribers are
// the real-time UI bridges; nobody waits for them.
func NewRedisNotifier(addr string) Notifier {
	return &redisNotifier{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (n *redisNotifier) StockChanged(ctx context.Context, ev StockEvent) {
	n.publish(ctx, stockChannel, ev)
}

func (n *redisNotifier) PaymentSettled(ctx context.Context, ev SettlementEvent) {
	n.publish(ctx, fmt.Sprintf(orderChannelPattern, ev.BuyerID), ev)
}

// publish swallows every failure. The settlement transaction has
// already committed by the time events go out; a dead redis must not
// look like a failed payment.
func (n *redisNotifier) publish(ctx context.Context, channel string, payload interface{}) {
	log := logger.FromCtx(ctx).With(zap.String("channel", channel))

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal event", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.client.Publish(pubCtx, channel, body).Err(); err != nil {
		log.Warn("failed to publish event", zap.Error(err))
	}
}
