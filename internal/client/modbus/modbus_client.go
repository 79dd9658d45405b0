package modbus

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"
	modbusIface "github.com/tetragramaton/hm310p-go/internal/interface/modbus"
	"go.uber.org/zap"
)

type handler struct {
	modbusIface.API
	closeFn func() error
}

// NewHandler opens the RTU serial line described by param. When log is not
// nil, raw frames are traced through it at debug level.
func NewHandler(param modbusIface.SerialParam, log *zap.Logger) (modbusIface.Client, error) {
	rh := modbus.NewRTUClientHandler(param.Port)
	rh.BaudRate = param.Baud
	rh.DataBits = param.DataBits
	rh.Parity = param.Parity
	rh.StopBits = param.StopBits
	rh.SlaveId = param.SlaveID
	rh.Timeout = time.Duration(param.TimeoutMs) * time.Millisecond
	if log != nil && log.Core().Enabled(zap.DebugLevel) {
		std, err := zap.NewStdLogAt(log.Named("rtu"), zap.DebugLevel)
		if err == nil {
			rh.Logger = std
		}
	}
	if err := rh.Connect(); err != nil {
		return nil, fmt.Errorf("open %s: %w", param.Port, err)
	}

	return &handler{
		API:     modbus.NewClient(rh),
		closeFn: rh.Close,
	}, nil
}

func (h *handler) Close() error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}
