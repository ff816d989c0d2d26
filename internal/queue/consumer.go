package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/mrjaketay/timeApp-sub001/internal/obs"
)

// Handler processes one decoded event.  Returning an error rejects the
// message without requeue.
type Handler func(ctx context.Context, ev Envelope) error

// StartConsumer consumes AuditQueue until ctx is cancelled, reconnecting
// with exponential backoff (1s doubling to 30s) when the broker goes away.
func StartConsumer(ctx context.Context, url string, h Handler) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            obs.Error("event consumer: dial failed", err, map[string]any{"retry_in": backoff.String()})
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, h)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        obs.Error("event consumer: loop ended, reconnecting", err, nil)
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, h Handler) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        return fmt.Errorf("qos: %w", err)
    }
    if err := declareTopology(ch); err != nil {
        return err
    }
    msgs, err := ch.Consume(AuditQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := HandleDelivery(ctx, d.Body, h); err != nil {
                obs.Error("event consumer: handle message failed", err, map[string]any{"routing_key": d.RoutingKey})
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleDelivery decodes body and passes it to h.
func HandleDelivery(ctx context.Context, body []byte, h Handler) error {
    var ev Envelope
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    return h(ctx, ev)
}
