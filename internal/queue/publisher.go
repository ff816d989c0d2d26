package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/mrjaketay/timeApp-sub001/internal/obs"
)

// Publisher delivers events.  Services call it after their transaction
// commits and log, rather than return, any failure.
type Publisher interface {
    Publish(ctx context.Context, ev Envelope) error
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED=false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }

// AMQPPublisher publishes persistent JSON messages to Exchange.  The
// connection is opened lazily and re-dialed after a failure.
type AMQPPublisher struct {
    url  string
    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{url: url} }

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    if p.conn == nil || p.conn.IsClosed() {
        conn, err := amqp.Dial(p.url)
        if err != nil {
            return nil, fmt.Errorf("dial broker: %w", err)
        }
        p.conn = conn
    }
    ch, err := p.conn.Channel()
    if err != nil {
        return nil, fmt.Errorf("channel open: %w", err)
    }
    if err := declareTopology(ch); err != nil {
        _ = ch.Close()
        return nil, err
    }
    p.ch = ch
    return ch, nil
}

// Publish sends ev with ev.Type as the routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Envelope) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    ch, err := p.channel()
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, Exchange, ev.Type, false, false, pub); err != nil {
        _ = ch.Close()
        p.ch = nil
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        err := p.conn.Close()
        p.conn = nil
        return err
    }
    return nil
}

func declareTopology(ch *amqp.Channel) error {
    if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
        return fmt.Errorf("exchange declare: %w", err)
    }
    if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    if err := ch.QueueBind(AuditQueue, "#", Exchange, false, nil); err != nil {
        return fmt.Errorf("queue bind: %w", err)
    }
    return nil
}

// Emit builds an envelope and publishes it, logging failures.  Domain
// writes have already committed when it runs, so errors never reach the
// caller.
func Emit(ctx context.Context, p Publisher, eventType, companyID string, data any) {
    if p == nil {
        return
    }
    ev, err := NewEnvelope(eventType, companyID, data)
    if err != nil {
        obs.Error("event encode failed", err, map[string]any{"event": eventType})
        return
    }
    pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
    defer cancel()
    if err := p.Publish(pctx, ev); err != nil {
        obs.Error("event publish failed", err, map[string]any{"event": eventType, "company_id": companyID})
    }
}
