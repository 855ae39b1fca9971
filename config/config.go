package config

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"

	appConfig "cartflow/config/app"
	httpConfig "cartflow/config/http"
	paymentConfig "cartflow/config/payment"
	"cartflow/internal/infra/cache"
	"cartflow/internal/infra/database"
	"cartflow/internal/infra/messaging"
	"cartflow/pkg/logger"
	"cartflow/pkg/validator"
)

type Config struct {
	App          appConfig.Config     `mapstructure:"app"`
	HttpCfg      httpConfig.Config    `mapstructure:"http"`
	LogCfg       logger.LogConfig     `mapstructure:"log"`
	DatabaseCfg  database.Config      `mapstructure:"database"`
	CacheCfg     cache.Config         `mapstructure:"cache"`
	MessagingCfg messaging.Config     `mapstructure:"messaging"`
	ValidatorCfg validator.Config     `mapstructure:"validator"`
	PaymentCfg   paymentConfig.Config `mapstructure:"payment"`
}

var Cfg *Config

func setDefault() {
	appConfig.SetDefault()
	httpConfig.SetDefault()
	logger.SetDefault()
	database.SetDefault()
	cache.SetDefault()
	messaging.SetDefault()
	validator.SetDefault()
	paymentConfig.SetDefault()
}

// MustLoad reads config.<env>.yaml from the working directory (APP_ENV
// selects the file, defaulting to local), applies defaults and
// environment overrides, and exits the process if the result cannot be
// parsed.
func MustLoad() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warnf("no config file found for env %s, using defaults: %v", env, err)
	}
	setDefault()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Error parsing config: %v", err)
	}
	Cfg = &cfg
	return Cfg
}

func SetDebugMode(e *echo.Echo, debug bool) {
	Cfg.App.Debug = debug
	e.Debug = debug
	if debug {
		log.SetLevel(log.DEBUG)
	} else {
		log.SetLevel(log.INFO)
	}
}

func (c *Config) Http() *httpConfig.Config { return &c.HttpCfg }

func (c *Config) Log() *logger.LogConfig { return &c.LogCfg }

func (c *Config) Database() *database.Config { return &c.DatabaseCfg }

func (c *Config) Cache() *cache.Config { return &c.CacheCfg }

func (c *Config) Messaging() *messaging.Config { return &c.MessagingCfg }

func (c *Config) Validator() *validator.Config { return &c.ValidatorCfg }

func (c *Config) Payment() *paymentConfig.Config { return &c.PaymentCfg }
