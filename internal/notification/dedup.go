package notification

import (
	"context"
	"time"
)

// dedupGuard suppresses a repeat alert when the same user already got a
// notification with the same trigger and rendered title inside the window.
type dedupGuard struct {
	sink   NotificationSink
	window time.Duration
}

func (g dedupGuard) alreadyNotified(ctx context.Context, userID, triggerID, title string, now time.Time) (bool, error) {
	return g.sink.Exists(ctx, userID, triggerID, title, now.Add(-g.window))
}
