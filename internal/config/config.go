package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	modbusIface "github.com/tetragramaton/hm310p-go/internal/interface/modbus"
)

type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Debug     bool            `mapstructure:"debug"`
}

type SerialConfig struct {
	Port     string        `mapstructure:"port"`
	Baud     int           `mapstructure:"baud"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"` // "N","E","O"
	StopBits int           `mapstructure:"stop_bits"`
	SlaveID  int           `mapstructure:"slave_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MQTTConfig struct {
	URL      string `mapstructure:"url"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	TLS      bool   `mapstructure:"tls"`
}

type TelemetryConfig struct {
	DeviceID string        `mapstructure:"device_id"`
	Area     string        `mapstructure:"area"`
	Interval time.Duration `mapstructure:"interval"`
}

// EnvPrefix is prepended to every environment override, e.g. HM310P_SERIAL_PORT.
const EnvPrefix = "HM310P"

// New returns a viper instance carrying the defaults and env binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.parity", "N")
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.slave_id", 1)
	v.SetDefault("serial.timeout", "250ms")

	v.SetDefault("mqtt.url", "tcp://mqtt:1883")
	v.SetDefault("mqtt.client_id", "hm310p-adapter")

	v.SetDefault("telemetry.device_id", "hm310p")
	v.SetDefault("telemetry.area", "lab")
	v.SetDefault("telemetry.interval", "1s")

	v.SetDefault("debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration and validates the serial section.
func Load(v *viper.Viper, path string) (*Config, error) {
	cfg, err := Read(v, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Serial.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read merges path (if not empty) into v and decodes the result.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the serial settings against what an RTU line accepts.
func (c SerialConfig) Validate() error {
	if c.Port == "" {
		return errors.New("missing serial port")
	}
	switch strings.ToUpper(c.Parity) {
	case "N", "E", "O":
	default:
		return fmt.Errorf("invalid parity %q", c.Parity)
	}
	if c.SlaveID < 1 || c.SlaveID > 247 {
		return fmt.Errorf("slave id %d outside 1..247", c.SlaveID)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	return nil
}

// Param converts the config to the transport's parameter block.
func (c SerialConfig) Param() modbusIface.SerialParam {
	return modbusIface.SerialParam{
		Port:      c.Port,
		Baud:      c.Baud,
		DataBits:  c.DataBits,
		Parity:    strings.ToUpper(c.Parity),
		StopBits:  c.StopBits,
		SlaveID:   byte(c.SlaveID),
		TimeoutMs: int(c.Timeout / time.Millisecond),
	}
}
