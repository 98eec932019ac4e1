package config

import (
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_ReadsFileAndEnvironment(t *testing.T) {
	t.Setenv("FLEETLEDGER_INVOICE_MAX_TX_ATTEMPTS", "9")
	t.Setenv("FLEETLEDGER_STORE_TYPE", "dynamodb")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, types.ModeLocal, cfg.Deployment.Mode)
	assert.Equal(t, types.StoreTypeDynamoDB, cfg.Store.Type)
	assert.Equal(t, 9, cfg.Invoice.MaxTxAttempts)
	assert.True(t, cfg.Invoice.SequenceFallback)
	assert.Equal(t, "fleetledger_documents", cfg.DynamoDB.TableName)
	assert.Equal(t, types.MemoryPubSub, cfg.Event.PubSub)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"cpu", "alloc_objects", "inuse_space"}, cfg.Pyroscope.ProfileTypes)
}

func TestNewConfig_AuthNeedsSecret(t *testing.T) {
	t.Setenv("FLEETLEDGER_AUTH_ENABLED", "true")

	_, err := NewConfig()
	require.Error(t, err)

	t.Setenv("FLEETLEDGER_AUTH_SECRET", "s3cret")
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Configuration) {}},
		{name: "unknown store", mutate: func(c *Configuration) { c.Store.Type = "postgres" }, wantErr: true},
		{name: "negative attempts", mutate: func(c *Configuration) { c.Invoice.MaxTxAttempts = -1 }, wantErr: true},
		{name: "missing address", mutate: func(c *Configuration) { c.Server.Address = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
