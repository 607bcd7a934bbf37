package providers

import (
	"context"
	"errors"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

// Publisher delivers a stored notification to one live channel.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Fanout publishes to every channel and joins their errors. One failing
// channel does not stop the others.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
