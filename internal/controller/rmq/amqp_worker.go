package rmq

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/config"
	"voice_relay/entity"
	"voice_relay/pkg/logger"
	"voice_relay/pkg/rabbitmq"
)

// ErrChannelClosed is returned by StartConsumer when the broker stops
// delivering before the worker was asked to stop.
var ErrChannelClosed = errors.New("amqp delivery channel closed")

// EventObserver counts consumed events by result.
type EventObserver interface {
	ObserveEvent(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string) {}

// AMQPWorker consumes voice events and hands them to the catalog mirror.
type AMQPWorker struct {
	conn     *amqp.Connection
	amqpChan Channel
	cfg      config.RMQ
	l        logger.Interface
	mirror   entity.CatalogMirror
	observer EventObserver
}

func NewAMQPWorker(cfg config.RMQ, l logger.Interface, mirror entity.CatalogMirror, observer EventObserver) (*AMQPWorker, error) {
	if observer == nil {
		observer = nopObserver{}
	}

	mqConn, err := rabbitmq.NewRabbitMQConn(cfg)
	if err != nil {
		return nil, err
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		mqConn.Close()
		return nil, errors.Wrap(err, "amqpConn.Channel")
	}

	return &AMQPWorker{conn: mqConn, cfg: cfg, l: l, amqpChan: amqpChan, mirror: mirror, observer: observer}, nil
}

// StartConsumer declares the topology and consumes until ctx is done or the
// channel closes.
func (c *AMQPWorker) StartConsumer(ctx context.Context) error {
	ch := c.amqpChan

	if err := setupExchangeAndQueue(ch, c.l, c.cfg.Exchange, c.cfg.Queue, voiceBindingKey); err != nil {
		return errors.Wrap(err, "SetupExchangeAndQueue")
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return errors.Wrap(err, "Qos")
	}

	deliveries, err := ch.Consume(
		c.cfg.Queue,
		"",
		consumeAutoAck,
		consumeExclusive,
		consumeNoLocal,
		consumeNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Consume")
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	c.l.Info("Consuming voice events from queue: %s", c.cfg.Queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case chanErr := <-closed:
			if chanErr == nil {
				if ctx.Err() != nil {
					return nil
				}
				return ErrChannelClosed
			}
			c.l.Error("ch.NotifyClose: %v", chanErr)
			return chanErr
		case delivery, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrChannelClosed
			}
			c.HandleDelivery(ctx, delivery)
		}
	}
}

// HandleDelivery applies one event. Malformed payloads are dropped; mirror
// failures are requeued once and dropped on redelivery.
func (c *AMQPWorker) HandleDelivery(ctx context.Context, delivery amqp.Delivery) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "consumer")
	defer span.End()
	span.SetAttributes(attribute.String("routing_key", delivery.RoutingKey))

	var event entity.VoiceEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		c.l.Error(err, "rmq - worker - malformed event %s", delivery.MessageId)
		c.observe("dropped")
		c.ack(delivery)
		return
	}

	err := c.mirror.Apply(ctx, event)
	if errors.Is(err, entity.ErrEmptyFileID) || errors.Is(err, entity.ErrUnknownEvent) {
		c.l.Error(err, "rmq - worker - invalid event %s", delivery.MessageId)
		c.observe("dropped")
		c.ack(delivery)
		return
	}
	if err != nil {
		c.l.Error(err, "rmq - worker - apply %s event for %s", event.Type, event.Voice.FileID)
		if delivery.Redelivered {
			c.observe("failed")
		} else {
			c.observe("requeued")
		}
		if err := delivery.Reject(!delivery.Redelivered); err != nil {
			c.l.Error(err, "rmq - worker - reject")
		}
		return
	}

	c.observe("applied")
	c.ack(delivery)
}

func (c *AMQPWorker) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveEvent(result)
	}
}

func (c *AMQPWorker) ack(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.l.Error(err, "rmq - worker - ack")
	}
}

// CloseChan closes the channel and the connection.
func (c *AMQPWorker) CloseChan() error {
	if err := c.amqpChan.Close(); err != nil {
		c.l.Error("AMQPWorker CloseChan: %v", err)
		return err
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
