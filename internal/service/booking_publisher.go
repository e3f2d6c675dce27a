// Package service publishes booking events to RabbitMQ.  Publishing is
// best effort: errors are logged and returned so the ledger can ignore
// them without failing the request that committed the booking.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restroo/internal/queue"
)

// ErrBrokerUnavailable is returned without touching the network while
// another caller is dialing or shortly after a dial failed.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable")

const (
	defaultDialTimeout = 2 * time.Second
	defaultRedialAfter = 5 * time.Second
)

// BookingPublisher keeps one broker connection and reopens it after the
// broker drops it.  The mutex guards state only; dialing happens outside
// it and never outlives the caller's deadline.
type BookingPublisher struct {
	url         string
	dialTimeout time.Duration
	redialAfter time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	dialing bool
	retryAt time.Time
	closed  bool
}

func NewBookingPublisher(url string) *BookingPublisher {
	return &BookingPublisher{url: url, dialTimeout: defaultDialTimeout, redialAfter: defaultRedialAfter}
}

// PublishBookingEvent sends ev to the booking queue as a persistent JSON
// message.
func (p *BookingPublisher) PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	ch, err := p.channel(ctx)
	if err != nil {
		if !errors.Is(err, ErrBrokerUnavailable) {
			log.Printf("rabbitmq: connect failed: %v", err)
		}
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                     // default exchange
		queue.BookingQueueName, // routing key = queue name
		false,                  // mandatory
		false,                  // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		p.mu.Lock()
		if p.ch == ch {
			p.reset()
		}
		p.mu.Unlock()
		return err
	}
	return nil
}

// channel returns the open channel, dialing when there is none.  Only one
// caller dials at a time; the others fail fast instead of queueing.
func (p *BookingPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	if p.closed || p.dialing || time.Now().Before(p.retryAt) {
		p.mu.Unlock()
		return nil, ErrBrokerUnavailable
	}
	p.reset()
	p.dialing = true
	p.mu.Unlock()

	conn, ch, err := p.dial(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialing = false
	if err != nil {
		p.retryAt = time.Now().Add(p.redialAfter)
		return nil, err
	}
	if p.closed {
		_ = conn.Close()
		return nil, ErrBrokerUnavailable
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// dial connects and declares the queue.  The TCP connect and the AMQP
// handshake share one deadline: the dial timeout or the context's, if
// sooner.
func (p *BookingPublisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	timeout := p.dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, nil, context.DeadlineExceeded
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.BookingQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// reset drops the current connection.  Callers hold p.mu.
func (p *BookingPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.  Later publishes fail fast.
func (p *BookingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.reset()
	return nil
}
