package modbus

//go:generate mockgen -destination=mocks/mock_modbus.go -package=mocks . Client

// SerialParam describes one RTU serial line and the unit addressed on it.
type SerialParam struct {
	Port      string `json:"port"`
	Baud      int    `json:"baud"`
	DataBits  int    `json:"data_bits"`
	Parity    string `json:"parity"` // "N","E","O"
	StopBits  int    `json:"stop_bits"`
	SlaveID   byte   `json:"slave_id"`
	TimeoutMs int    `json:"timeout_ms"`
}

// Client is a connected Modbus transport. One request is in flight at a time.
type Client interface {
	API
	Close() error
}

// API is the subset of github.com/goburrow/modbus.Client the PSU layer uses.
// Results are the raw big-endian register bytes returned by the device.
type API interface {
	ReadHoldingRegisters(address, quantity uint16) (results []byte, err error)
	WriteSingleRegister(address, value uint16) (results []byte, err error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) (results []byte, err error)
}
