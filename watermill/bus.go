// Package watermill provides an in-process event bus for chat widget events
// built on Watermill's Go channel pub/sub.
package watermill

import (
	"context"
	"log/slog"

	wm "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fwojciec/bookchat"
	"github.com/google/uuid"
)

// Ensure Bus implements bookchat.ToggleSource at compile time.
var _ bookchat.ToggleSource = (*Bus)(nil)

// Bus broadcasts named widget events to every subscriber.
// Publishing blocks until every subscriber has acknowledged the event.
// Events published while nobody is subscribed are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a new Bus. A nil logger disables Watermill's logging.
func NewBus(logger *slog.Logger) *Bus {
	var adapter wm.LoggerAdapter = wm.NopLogger{}
	if logger != nil {
		adapter = wm.NewSlogLogger(logger)
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, adapter),
	}
}

// PublishToggle asks every subscribed widget to toggle its panel and returns
// once each of them has applied the toggle. It must not be called from a
// goroutine that consumes toggles from this bus.
func (b *Bus) PublishToggle() error {
	return b.pubsub.Publish(bookchat.ToggleTopic, message.NewMessage(uuid.NewString(), nil))
}

// Toggles subscribes to toggle events. The subscription is registered before
// Toggles returns. Each event must be acknowledged by the receiver.
func (b *Bus) Toggles(ctx context.Context) (<-chan bookchat.ToggleEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, bookchat.ToggleTopic)
	if err != nil {
		return nil, err
	}

	out := make(chan bookchat.ToggleEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts down the bus and closes all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
