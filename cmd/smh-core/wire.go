//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"go.uber.org/zap"
)

func InitCore(cfg config.MQTTConfig, log *zap.Logger) (*Core, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil // wire will generate the result
}
