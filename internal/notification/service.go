package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Hirdyansh9/Orderbook/internal/config"
	"github.com/Hirdyansh9/Orderbook/internal/logging"
	"github.com/Hirdyansh9/Orderbook/internal/models"
	"github.com/Hirdyansh9/Orderbook/internal/trigger"
)

// Deps are the adapters the Service drives. Publisher and Lock are optional.
type Deps struct {
	Policies  PolicyStore
	Records   RecordProvider
	Sink      NotificationSink
	Publisher Publisher
	Lock      ScanLock
}

// Service scans orders against every owner's trigger policy and writes the
// resulting notifications.
type Service struct {
	policies  PolicyStore
	records   RecordProvider
	sink      NotificationSink
	publisher Publisher
	lock      ScanLock
	logger    *logging.Logger

	evaluator *trigger.Evaluator
	renderer  *trigger.Renderer
	dedup     dedupGuard
	schedule  string
	loc       *time.Location
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// New constructs a notification Service.
func New(deps Deps, logger *logging.Logger, cfg config.Config) (*Service, error) {
	if deps.Policies == nil || deps.Records == nil || deps.Sink == nil {
		return nil, errors.New("notification service requires policy store, record provider and sink")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	window := cfg.Scan.DedupWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	schedule := cfg.Scan.Schedule
	if schedule == "" {
		schedule = "@every 1h"
	}
	lock := deps.Lock
	if lock == nil {
		lock = NewLocalLock()
	}

	svc := &Service{
		policies:  deps.Policies,
		records:   deps.Records,
		sink:      deps.Sink,
		publisher: deps.Publisher,
		lock:      lock,
		logger:    logger,
		renderer:  trigger.NewRenderer(cfg.Scan.Locale),
		dedup:     dedupGuard{sink: deps.Sink, window: window},
		schedule:  schedule,
		loc:       loc,
		now:       time.Now,
	}
	svc.evaluator = trigger.NewEvaluator(loc, func() time.Time { return svc.now() })
	return svc, nil
}

// publish hands n to the live channels. Delivery is best-effort.
func (s *Service) publish(ctx context.Context, n models.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.WithError(err).WithField("user_id", n.UserID).Warn("Publish notification failed")
	}
}
