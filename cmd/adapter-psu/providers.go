package main

import (
	"github.com/google/wire"
	mqttClient "github.com/tetragramaton/hm310p-go/internal/client/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"github.com/tetragramaton/hm310p-go/internal/device"
	modbusIface "github.com/tetragramaton/hm310p-go/internal/interface/modbus"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/psu"
	"go.uber.org/zap"
)

var providerSet = wire.NewSet(
	provideSerialParam,
	provideMQTTConfig,
	provideTelemetry,
	device.ProvideModbusClient,
	provideSession,
	provideMQTTClient,
	wire.Bind(new(session), new(*psu.Session)),
	NewAdapter,
)

func provideSerialParam(cfg *config.Config) modbusIface.SerialParam { return cfg.Serial.Param() }

func provideMQTTConfig(cfg *config.Config) config.MQTTConfig { return cfg.MQTT }

func provideTelemetry(cfg *config.Config) config.TelemetryConfig { return cfg.Telemetry }

func provideSession(bus modbusIface.Client, param modbusIface.SerialParam, log *zap.Logger) (*psu.Session, func(), error) {
	s, err := device.ProvideSession(bus, param, log)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.Warn("close session", zap.Error(err))
		}
	}, nil
}

func provideMQTTClient(cfg config.MQTTConfig, log *zap.Logger) (mqttIface.Client, func(), error) {
	c, err := mqttClient.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close(250) }, nil
}
