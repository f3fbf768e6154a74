package relay

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Notification is one addressed outbound message. Message holds one or
// more lines delivered together.
type Notification struct {
	ID      uuid.UUID
	To      Address
	Message []string
}

// NewNotification builds a notification with a fresh correlation id.
func NewNotification(to Address, lines ...string) Notification {
	return Notification{ID: uuid.New(), To: to, Message: lines}
}

// Queue is the shared outbound queue all workers push notifications onto.
type Queue struct {
	ch chan Notification
}

// NewQueue creates a queue with the given capacity. Pushing to a full
// queue blocks the producing worker, which is the engine's only form of
// back-pressure.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Notification, capacity)}
}

// Push enqueues a notification for delivery.
func (q *Queue) Push(n Notification) {
	q.ch <- n
}

// Notifications exposes the queue's receive side. The relay loop is the
// normal consumer.
func (q *Queue) Notifications() <-chan Notification {
	return q.ch
}

// Deliverer performs the final delivery of a resolved notification. The
// chat gateway implements this outside the core engine.
type Deliverer interface {
	Deliver(ctx context.Context, to Recipient, message []string) error
}

// LogDeliverer writes deliveries to the log. It stands in for the chat
// gateway in tests and local runs.
type LogDeliverer struct {
	Logger *slog.Logger
}

func (d LogDeliverer) Deliver(_ context.Context, to Recipient, message []string) error {
	d.Logger.Info("Delivering notification",
		slog.String("to", string(to)),
		slog.Any("message", message),
	)
	return nil
}

// Relay drains the outbound queue, resolves each notification's address
// and hands the result to the deliverer.
type Relay struct {
	queue     *Queue
	resolver  *Resolver
	deliverer Deliverer
	logger    *slog.Logger
}

// New creates a relay over the shared queue.
func New(queue *Queue, resolver *Resolver, deliverer Deliverer, logger *slog.Logger) *Relay {
	return &Relay{
		queue:     queue,
		resolver:  resolver,
		deliverer: deliverer,
		logger:    logger.With(slog.String("component", "relay")),
	}
}

// Run processes notifications until ctx is cancelled. Resolution and
// delivery failures are logged and skipped; one bad address must not stall
// the queue.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("Relay started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Relay stopped")
			return
		case n := <-r.queue.Notifications():
			recipients, err := r.resolver.Resolve(n.To)
			if err != nil {
				r.logger.Error("Failed to resolve notification address",
					slog.String("notification_id", n.ID.String()),
					slog.String("error", err.Error()),
				)
				continue
			}
			for _, to := range recipients {
				if err := r.deliverer.Deliver(ctx, to, n.Message); err != nil {
					r.logger.Error("Failed to deliver notification",
						slog.String("notification_id", n.ID.String()),
						slog.String("to", string(to)),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}
}
