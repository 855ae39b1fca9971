package messaging

import (
	"cartflow/internal/infra/messaging/rabbitmq"

	"github.com/spf13/viper"
)

// Config holds the outbound/inbound messaging configuration: the
// orders.events fan-out exchange and the payments.webhooks consumer.
type Config struct {
	Enabled  bool            `mapstructure:"enabled"`
	RabbitMQ rabbitmq.Config `mapstructure:"rabbitmq"`
}

// SetDefault sets default configuration.
func SetDefault() {
	viper.SetDefault("messaging.enabled", false)
	rabbitmq.RabbitMQSetDefault()
}
