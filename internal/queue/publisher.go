package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends booking events to RabbitMQ from a background worker, so a
// slow or absent broker never holds up the request that produced the event.
// The connection is dialled on first use and dropped after any failure so
// the next send reconnects.  It is safe for concurrent use.
type Publisher struct {
	url string
	log *slog.Logger

	pending   chan BookingEvent
	done      chan struct{}
	finished  chan struct{} // nil until the worker is started
	closeOnce sync.Once

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
	retryAt  time.Time
}

const (
	dialTimeout   = 2 * time.Second
	redialPause   = 5 * time.Second
	sendTimeout   = 3 * time.Second
	pendingEvents = 1024
)

var (
	// ErrBrokerUnavailable is returned while the publisher is waiting out
	// the pause after a failed dial.
	ErrBrokerUnavailable = errors.New("rabbitmq unavailable")
	// ErrPublishBacklogFull is returned when events arrive faster than the
	// worker can hand them to the broker.  The event is dropped.
	ErrPublishBacklogFull = errors.New("publish backlog full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher closed")
)

// NewPublisher returns a Publisher for the broker at url and starts its
// worker.  No connection is made until the first event is sent.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	p := newPublisher(url, log, pendingEvents)
	p.finished = make(chan struct{})
	go p.run()
	return p
}

func newPublisher(url string, log *slog.Logger, backlog int) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		url:      url,
		log:      log,
		pending:  make(chan BookingEvent, backlog),
		done:     make(chan struct{}),
		declared: map[string]bool{},
	}
}

// Publish queues ev for delivery and returns without waiting for the
// broker.  Delivery failures are logged by the worker.
func (p *Publisher) Publish(_ context.Context, ev BookingEvent) error {
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.pending <- ev:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s for booking %s", ErrPublishBacklogFull, ev.Type, ev.BookingID)
	}
}

// run delivers queued events until Close, then flushes what is left.
func (p *Publisher) run() {
	defer close(p.finished)
	for {
		select {
		case ev := <-p.pending:
			p.deliver(ev)
		case <-p.done:
			for {
				select {
				case ev := <-p.pending:
					p.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(ev BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := p.send(ctx, ev); err != nil {
		p.log.Warn("publish booking event failed", "type", ev.Type, "booking_id", ev.BookingID, "error", err)
	}
}

// send marshals ev and sends it to the queue named by ev.Type as a
// persistent message.
func (p *Publisher) send(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if !p.declared[ev.Type] {
		// Durable so messages survive broker restarts.
		if _, err := ch.QueueDeclare(ev.Type, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("declare queue %s: %w", ev.Type, err)
		}
		p.declared[ev.Type] = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.BookingID + ":" + ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ev.Type, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// channel returns the open channel, dialling if needed.  p.mu must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if time.Now().Before(p.retryAt) {
		return nil, ErrBrokerUnavailable
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		p.retryAt = time.Now().Add(redialPause)
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.Debug("rabbitmq publisher connected")
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
	p.declared = map[string]bool{}
}

// Close stops accepting events, waits for the worker to flush the backlog
// and drops the broker connection.  A publisher built without a worker is
// only disconnected.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	if p.finished != nil {
		select {
		case <-p.finished:
		case <-time.After(2 * sendTimeout):
			p.log.Warn("publisher flush timed out", "pending", len(p.pending))
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
