package events

import (
	"context"
	"errors"
)

// DirectPublisher hands events straight to a handler in the caller's
// goroutine. It is used when no broker is configured.
type DirectPublisher struct {
	handler Handler
}

func NewDirectPublisher(h Handler) *DirectPublisher {
	return &DirectPublisher{handler: h}
}

func (p *DirectPublisher) Publish(ctx context.Context, events ...Event) error {
	var errs []error
	for _, e := range events {
		if err := p.handler.HandleEvent(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
