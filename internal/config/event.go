package config

import (
	"github.com/fleetledger/fleetledger/internal/types"
)

// EventConfig holds configuration for the notification sink
type EventConfig struct {
	PubSub types.PubSubType `mapstructure:"pubsub" default:"memory"`
	Topic  string           `mapstructure:"topic" default:"fleetledger.events"`
}
