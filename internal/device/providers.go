package device

import (
	"github.com/google/wire"
	modbusClient "github.com/tetragramaton/hm310p-go/internal/client/modbus"
	modbusIface "github.com/tetragramaton/hm310p-go/internal/interface/modbus"
	"github.com/tetragramaton/hm310p-go/internal/psu"
	"go.uber.org/zap"
)

// ProviderSet opens the serial line and runs the PSU handshake on it.
var ProviderSet = wire.NewSet(ProvideModbusClient, ProvideSession)

func ProvideModbusClient(param modbusIface.SerialParam, log *zap.Logger) (modbusIface.Client, error) {
	return modbusClient.NewHandler(param, log)
}

// ProvideSession closes bus when the handshake fails, so the caller only ever
// owns a ready session.
func ProvideSession(bus modbusIface.Client, param modbusIface.SerialParam, log *zap.Logger) (*psu.Session, error) {
	s, err := psu.Open(bus, psu.WithLogger(log), psu.WithUnitID(param.SlaveID))
	if err != nil {
		if cerr := bus.Close(); cerr != nil {
			log.Warn("close after failed handshake", zap.Error(cerr))
		}
		return nil, err
	}
	return s, nil
}
