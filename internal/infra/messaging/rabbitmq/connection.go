package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	"cartflow/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection wraps a single amqp.Connection shared by the producer
// (orders.events fan-out) and the payments.webhooks consumer, with
// automatic reconnect.
type Connection struct {
	config Config
	conn   *amqp.Connection
	mu     sync.RWMutex
	closed bool
}

func NewConnection(config Config) (*Connection, error) {
	c := &Connection{config: config}

	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	go c.handleReconnect()

	logger.Infof("RabbitMQ connected: %s:%d", config.Host, config.Port)
	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(GetRabbitMQURI(c.config))
	if err != nil {
		return err
	}

	c.conn = conn
	return nil
}

func (c *Connection) handleReconnect() {
	for {
		if c.closed {
			return
		}

		reason, ok := <-c.conn.NotifyClose(make(chan *amqp.Error))
		if !ok || c.closed {
			return
		}

		logger.Infof("RabbitMQ connection lost: %v. Reconnecting...", reason)

		for attempt := 0; attempt < 10; attempt++ {
			if c.closed {
				return
			}

			time.Sleep(time.Duration(attempt*2) * time.Second)

			if err := c.connect(); err != nil {
				logger.Infof("reconnect attempt %d failed: %v", attempt+1, err)
				continue
			}

			logger.Infof("RabbitMQ reconnected")
			break
		}
	}
}

func (c *Connection) GetConnection() *amqp.Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Connection) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
