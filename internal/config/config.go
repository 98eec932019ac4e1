package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	DynamoDB   DynamoDBConfig   `mapstructure:"dynamodb"`
	Event      EventConfig      `mapstructure:"event"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Invoice    InvoiceConfig    `mapstructure:"invoice"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Pyroscope  PyroscopeConfig  `mapstructure:"pyroscope"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret" validate:"required_if=Enabled true"`
}

// StoreConfig picks the document store backend
type StoreConfig struct {
	Type types.StoreType `mapstructure:"type" validate:"required,oneof=memory dynamodb"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

// InvoiceConfig tunes invoice numbering
type InvoiceConfig struct {
	// SequenceFallback enables the non-atomic scan based sequence estimate when the
	// counter transaction cannot be committed.
	SequenceFallback bool `mapstructure:"sequence_fallback"`
	// MaxTxAttempts bounds optimistic transaction retries on write conflicts.
	MaxTxAttempts int `mapstructure:"max_tx_attempts" validate:"gte=0"`
}

// CacheConfig controls the in-process cache of customers, vehicles and transporters
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_pass"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, real deployments inject the environment directly
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fleetledger")

	v.SetEnvPrefix("FLEETLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("store.type", types.StoreTypeMemory)
	v.SetDefault("dynamodb.table_name", "fleetledger_documents")
	v.SetDefault("event.pubsub", types.MemoryPubSub)
	v.SetDefault("event.topic", "fleetledger.events")
	v.SetDefault("invoice.sequence_fallback", true)
	v.SetDefault("invoice.max_tx_attempts", DefaultMaxTxAttempts)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("pyroscope.application_name", "fleetledger")
	v.SetDefault("pyroscope.sample_rate", 100)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// DefaultMaxTxAttempts is used when the configuration leaves invoice.max_tx_attempts unset
const DefaultMaxTxAttempts = 5

// DefaultTxTimeout bounds how long the retry loop of a transaction may keep trying
const DefaultTxTimeout = 10 * time.Second

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Store:      StoreConfig{Type: types.StoreTypeMemory},
		Event: EventConfig{
			PubSub: types.MemoryPubSub,
			Topic:  "fleetledger.events",
		},
		Invoice: InvoiceConfig{
			SequenceFallback: true,
			MaxTxAttempts:    DefaultMaxTxAttempts,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
	}
}
