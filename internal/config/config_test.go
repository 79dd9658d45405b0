package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, 8, cfg.Serial.DataBits)
	assert.Equal(t, "N", cfg.Serial.Parity)
	assert.Equal(t, 1, cfg.Serial.StopBits)
	assert.Equal(t, 1, cfg.Serial.SlaveID)
	assert.Equal(t, 250*time.Millisecond, cfg.Serial.Timeout)
	assert.Equal(t, time.Second, cfg.Telemetry.Interval)

	p := cfg.Serial.Param()
	assert.Equal(t, 250, p.TimeoutMs)
	assert.Equal(t, byte(1), p.SlaveID)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hm310p.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serial:
  port: /dev/ttyACM0
  slave_id: 3
  timeout: 500ms
telemetry:
  device_id: bench-psu
`), 0o644))
	t.Setenv("HM310P_SERIAL_BAUD", "19200")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 3, cfg.Serial.SlaveID)
	assert.Equal(t, 500*time.Millisecond, cfg.Serial.Timeout)
	assert.Equal(t, 19200, cfg.Serial.Baud)
	assert.Equal(t, "bench-psu", cfg.Telemetry.DeviceID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSerialValidate(t *testing.T) {
	base := SerialConfig{Port: "/dev/ttyUSB0", Parity: "n", SlaveID: 1, Timeout: time.Second}
	require.NoError(t, base.Validate())

	bad := []func(c *SerialConfig){
		func(c *SerialConfig) { c.Port = "" },
		func(c *SerialConfig) { c.Parity = "X" },
		func(c *SerialConfig) { c.SlaveID = 0 },
		func(c *SerialConfig) { c.SlaveID = 248 },
		func(c *SerialConfig) { c.Timeout = 0 },
	}
	for i, mutate := range bad {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}

func TestReadSkipsSerialValidation(t *testing.T) {
	v := New()
	v.Set("serial.port", "")
	v.Set("mqtt.client_id", "smh-core")

	_, err := Load(v, "")
	assert.Error(t, err)

	cfg, err := Read(v, "")
	require.NoError(t, err)
	assert.Equal(t, "smh-core", cfg.MQTT.ClientID)
	assert.Equal(t, "tcp://mqtt:1883", cfg.MQTT.URL)
}
