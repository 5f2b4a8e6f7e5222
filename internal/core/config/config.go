package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the cache connection used to persist orders.
	Redis RedisConfig `mapstructure:",squash"`

	// Orders holds checkout pricing and storage settings.
	Orders OrdersConfig `mapstructure:",squash"`

	// Lifecycle holds the simulated shipping progression settings.
	Lifecycle LifecycleConfig `mapstructure:",squash"`

	// Events holds the tracking event sinks.
	Events EventsConfig `mapstructure:",squash"`
}

// RedisConfig holds the Redis connection details.
type RedisConfig struct {
	// URL is the connection string, e.g. redis://localhost:6379/0.
	URL string `mapstructure:"REDIS_URL" required:"true"`
}

// OrdersConfig holds checkout and storage settings for orders.
type OrdersConfig struct {
	// CacheKey is the key holding the whole order collection.
	CacheKey string `mapstructure:"ORDERS_CACHE_KEY" default:"userOrders"`
	// TaxRate is applied to the subtotal at checkout.
	TaxRate float64 `mapstructure:"ORDER_TAX_RATE" default:"0.10"`
	// ShippingFee is a flat amount added at checkout.
	ShippingFee float64 `mapstructure:"ORDER_SHIPPING_FEE" default:"0"`
}

// LifecycleConfig holds the delays between simulated shipping stages.
type LifecycleConfig struct {
	// ShippedDelay is the time from creation until the order ships.
	ShippedDelay time.Duration `mapstructure:"LIFECYCLE_SHIPPED_DELAY" default:"4m"`
	// InTransitDelay is the time from shipping until the order is in transit.
	InTransitDelay time.Duration `mapstructure:"LIFECYCLE_IN_TRANSIT_DELAY" default:"5m"`
	// DeliveredDelay is the time from transit until delivery.
	DeliveredDelay time.Duration `mapstructure:"LIFECYCLE_DELIVERED_DELAY" default:"5m"`
	// CancelPolicy decides whether cancelling revokes pending stages ("revoke")
	// or lets them keep firing ("last_write_wins").
	CancelPolicy string `mapstructure:"LIFECYCLE_CANCEL_POLICY" default:"revoke"`
}

// EventsConfig holds the optional sinks for tracking events.
type EventsConfig struct {
	// KafkaBrokers is a comma separated broker list. Empty disables Kafka.
	KafkaBrokers string `mapstructure:"EVENTS_KAFKA_BROKERS"`
	// KafkaTopic is the topic tracking events are written to.
	KafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC" default:"order.tracking"`
	// WebhookURL receives tracking events as JSON POSTs. Empty disables it.
	WebhookURL string `mapstructure:"EVENTS_WEBHOOK_URL"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged field to its env var and registers its default.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
