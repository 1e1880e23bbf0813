package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":3000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "http://localhost:4200", cfg.CORSOrigin)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.UserPoolID)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8081")
	t.Setenv("USER_POOL_ID", "us-east-1_abc123")
	t.Setenv("CLIENT_ID", "client-id")
	t.Setenv("CLIENT_SECRET", "client-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.EndpointAddrHTTP)
	assert.Equal(t, "us-east-1_abc123", cfg.UserPoolID)
	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, "client-secret", cfg.ClientSecret)
	// Untouched fields keep their defaults.
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
}
