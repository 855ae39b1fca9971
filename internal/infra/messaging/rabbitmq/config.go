package rabbitmq

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the RabbitMQ topology configuration: the connection, the
// exchanges/queues declared at startup, and the publisher's default
// exchange. cartflow declares exactly two exchanges: the outbound
// "orders.events" fan-out for domain events and the inbound
// "payments.webhooks" queue the payment orchestrator consumes.
type Config struct {
	Host           string           `mapstructure:"host"`
	Port           int              `mapstructure:"port"`
	Username       string           `mapstructure:"username"`
	Password       string           `mapstructure:"password"`
	ConnectionName string           `mapstructure:"connection_name"`
	Exchanges      []ExchangeConfig `mapstructure:"exchanges"`
	Consumers      []ConsumerConfig `mapstructure:"consumers"`
	Publisher      PublisherConfig  `mapstructure:"publisher"`
}

type ExchangeConfig struct {
	Name       string            `mapstructure:"name"`
	Type       string            `mapstructure:"type"`
	Durable    bool              `mapstructure:"durable"`
	AutoDelete bool              `mapstructure:"auto_delete"`
	Internal   bool              `mapstructure:"internal"`
	NoWait     bool              `mapstructure:"no_wait"`
	Args       map[string]string `mapstructure:"args"`
}

type QueueConfig struct {
	Name       string `mapstructure:"name"`
	Durable    bool   `mapstructure:"durable"`
	AutoDelete bool   `mapstructure:"auto_delete"`
	Exclusive  bool   `mapstructure:"exclusive"`
	NoWait     bool   `mapstructure:"no_wait"`
}

type ConsumerConfig struct {
	Name           string      `mapstructure:"name"`
	Enabled        bool        `mapstructure:"enabled"`
	Queue          QueueConfig `mapstructure:"queue"`
	ExchangeName   string      `mapstructure:"exchange_name"`
	RoutingKeys    []string    `mapstructure:"routing_keys"`
	PrefetchCount  int         `mapstructure:"prefetch_count"`
	WorkerPoolSize int         `mapstructure:"worker_pool_size"`
	AutoAck        bool        `mapstructure:"auto_ack"`
	Exclusive      bool        `mapstructure:"exclusive"`
	ConsumerTag    string      `mapstructure:"consumer_tag"`
}

type PublisherConfig struct {
	ExchangeName string `mapstructure:"exchange_name"`
}

func GetExchangeByName(config Config, name string) (*ExchangeConfig, error) {
	for _, exchange := range config.Exchanges {
		if exchange.Name == name {
			return &exchange, nil
		}
	}
	return nil, fmt.Errorf("exchange '%s' not found", name)
}

func GetConsumerByName(config Config, name string) (*ConsumerConfig, error) {
	for _, consumer := range config.Consumers {
		if consumer.Name == name {
			return &consumer, nil
		}
	}
	return nil, fmt.Errorf("consumer '%s' not found", name)
}

func GetEnabledConsumers(config Config) []ConsumerConfig {
	var enabled []ConsumerConfig
	for _, consumer := range config.Consumers {
		if consumer.Enabled {
			enabled = append(enabled, consumer)
		}
	}
	return enabled
}

// RabbitMQSetDefault registers the orders.events / payments.webhooks
// topology so a fresh environment boots with a working exchange even
// before an operator writes config.<env>.yaml.
func RabbitMQSetDefault() {
	viper.SetDefault("messaging.rabbitmq.host", "localhost")
	viper.SetDefault("messaging.rabbitmq.port", 5672)
	viper.SetDefault("messaging.rabbitmq.username", "guest")
	viper.SetDefault("messaging.rabbitmq.password", "guest")
	viper.SetDefault("messaging.rabbitmq.connection_name", "cartflow")
	viper.SetDefault("messaging.rabbitmq.publisher.exchange_name", "orders.events")
	viper.SetDefault("messaging.rabbitmq.exchanges", []map[string]interface{}{
		{"name": "orders.events", "type": "topic", "durable": true},
		{"name": "payments.webhooks", "type": "direct", "durable": true},
	})
	viper.SetDefault("messaging.rabbitmq.consumers", []map[string]interface{}{
		{
			"name":             "payment-webhooks",
			"enabled":          true,
			"exchange_name":    "payments.webhooks",
			"routing_keys":     []string{"webhook.received"},
			"prefetch_count":   10,
			"worker_pool_size": 4,
			"queue": map[string]interface{}{
				"name":    "payments.webhooks.q",
				"durable": true,
			},
		},
	})
}

func GetRabbitMQURI(c Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d", c.Username, c.Password, c.Host, c.Port)
}
