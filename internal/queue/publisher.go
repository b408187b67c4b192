package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/resort-booking/internal/config"
)

// Publisher sends booking events to a durable queue on the default
// exchange.  Each publish opens its own connection, which is plenty for the
// handful of admin decisions a resort makes per day.
type Publisher struct {
    url   string
    queue string
}

// NewPublisher returns a Publisher for cfg.  Callers should use NopPublisher
// when events are disabled.
func NewPublisher(cfg config.EventsConfig) *Publisher {
    return &Publisher{url: cfg.URL, queue: cfg.Queue}
}

// PublishBookingEvent publishes ev as a persistent JSON message.  Errors
// are logged and returned so the caller can ignore them.
func (p *Publisher) PublishBookingEvent(ctx context.Context, ev BookingStatusChangedEvent) error {
    log := logrus.WithFields(logrus.Fields{"queue": p.queue, "booking_id": ev.BookingID})

    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.WithError(err).Warn("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.WithError(err).Warn("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        log.WithError(err).Warn("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Action,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        log.WithError(err).Warn("rabbitmq: publish failed")
        return err
    }
    return nil
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, BookingStatusChangedEvent) error { return nil }
