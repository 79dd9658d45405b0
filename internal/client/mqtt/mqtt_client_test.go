package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"go.uber.org/zap"
)

func TestOptions(t *testing.T) {
	opts, err := Options(config.MQTTConfig{
		URL:      "tcp://broker:1883",
		ClientID: "hm310p-adapter",
		Username: "lab",
		Password: "secret",
	}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker:1883", opts.Servers[0].Host)
	assert.Equal(t, "hm310p-adapter", opts.ClientID)
	assert.Equal(t, "lab", opts.Username)
	assert.True(t, opts.AutoReconnect)
	assert.Nil(t, opts.TLSConfig)
}

func TestOptionsTLS(t *testing.T) {
	opts, err := Options(config.MQTTConfig{URL: "ssl://broker:8883", ClientID: "x", TLS: true}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, opts.TLSConfig)
}

func TestOptionsRequiresURLAndClientID(t *testing.T) {
	_, err := Options(config.MQTTConfig{ClientID: "x"}, zap.NewNop())
	assert.EqualError(t, err, "missing mqtt url")

	_, err = Options(config.MQTTConfig{URL: "tcp://broker:1883"}, zap.NewNop())
	assert.EqualError(t, err, "missing mqtt client id")
}
