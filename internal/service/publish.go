package service

import (
	"context"

	"github.com/fjod/artverse/internal/events"
	"go.uber.org/zap"
)

// publish hands events to the publisher. Delivery failures are logged and
// never fail the operation that produced them.
func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, evts ...events.Event) {
	if pub == nil || len(evts) == 0 {
		return
	}
	if err := pub.Publish(ctx, evts...); err != nil {
		log.Warn("failed to publish events", zap.Int("count", len(evts)), zap.Error(err))
	}
}
