//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/tetragramaton/hm310p-go/internal/device"
	modbusIface "github.com/tetragramaton/hm310p-go/internal/interface/modbus"
	"github.com/tetragramaton/hm310p-go/internal/psu"
	"go.uber.org/zap"
)

func InitSession(param modbusIface.SerialParam, log *zap.Logger) (*psu.Session, error) {
	wire.Build(device.ProviderSet)
	return nil, nil // wire will generate the result
}
