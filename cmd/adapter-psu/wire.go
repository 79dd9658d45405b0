//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"go.uber.org/zap"
)

func InitAdapter(cfg *config.Config, log *zap.Logger) (*Adapter, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil // wire will generate the result
}
