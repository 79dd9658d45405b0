package main

import (
	"github.com/google/wire"
	mqttClient "github.com/tetragramaton/hm310p-go/internal/client/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/config"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"go.uber.org/zap"
)

var providerSet = wire.NewSet(provideMQTTClient, NewCore)

func provideMQTTClient(cfg config.MQTTConfig, log *zap.Logger) (mqttIface.Client, func(), error) {
	c, err := mqttClient.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close(250) }, nil
}
