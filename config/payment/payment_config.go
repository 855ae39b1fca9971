package payment

import "github.com/spf13/viper"

// Config holds the payment orchestrator's dispatch settings. Gateway
// credentials themselves live encrypted in the gateway_configurations
// table; EncryptionKey is the AES-256 key (hex-encoded) used to open
// those blobs at dispatch time.
type Config struct {
	GatewayTimeout int    `mapstructure:"gateway_timeout"`
	EncryptionKey  string `mapstructure:"encryption_key"`
	StripeBaseURL  string `mapstructure:"stripe_base_url"`
}

func SetDefault() {
	viper.SetDefault("payment.gateway_timeout", 15)
	viper.SetDefault("payment.encryption_key", "")
	viper.SetDefault("payment.stripe_base_url", "https://api.stripe.com")
}
