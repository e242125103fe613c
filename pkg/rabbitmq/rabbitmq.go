package rabbitmq

import (
	"github.com/pkg/errors"
	"github.com/streadway/amqp"

	"voice_relay/config"
)

// NewRabbitMQConn dials the broker named by RMQ_URL.
func NewRabbitMQConn(cfg config.RMQ) (*amqp.Connection, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is empty")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "amqp.Dial")
	}
	return conn, nil
}
