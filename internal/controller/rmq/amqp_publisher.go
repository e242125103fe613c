package rmq

import (
	"context"
	"time"

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

// AMQPPublisher publishes voice events to a topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	amqpChan Channel
	exchange string
	l        logger.Interface
}

var _ entity.EventPublisher = (*AMQPPublisher)(nil)

func NewAMQPPublisher(cfg config.RMQ, l logger.Interface) (*AMQPPublisher, error) {
	mqConn, err := rabbitmq.NewRabbitMQConn(cfg)
	if err != nil {
		return nil, err
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		mqConn.Close()
		return nil, errors.Wrap(err, "amqpConn.Channel")
	}

	p, err := newAMQPPublisher(amqpChan, cfg.Exchange, l)
	if err != nil {
		mqConn.Close()
		return nil, err
	}
	p.conn = mqConn
	return p, nil
}

func newAMQPPublisher(ch Channel, exchange string, l logger.Interface) (*AMQPPublisher, error) {
	if err := declareExchange(ch, l, exchange); err != nil {
		return nil, err
	}
	return &AMQPPublisher{amqpChan: ch, exchange: exchange, l: l}, nil
}

func (p *AMQPPublisher) PublishVoiceEvent(ctx context.Context, event entity.VoiceEvent) error {
	_, span := otel.Tracer(traceName).Start(ctx, "PublishVoiceEvent")
	defer span.End()
	span.SetAttributes(attribute.String("routing_key", event.RoutingKey()))

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	p.l.Debug("Publishing message Exchange: %s, RoutingKey: %s", p.exchange, event.RoutingKey())

	if err := p.amqpChan.Publish(
		p.exchange,
		event.RoutingKey(),
		publishMandatory,
		publishImmediate,
		amqp.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    time.Now(),
			Type:         string(event.Type),
			Body:         body,
		},
	); err != nil {
		return errors.Wrap(err, "ch.Publish")
	}

	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if err := p.amqpChan.Close(); err != nil {
		p.l.Error("AMQPPublisher Close: %v", err)
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
