package psu

import (
	"encoding/binary"
	"errors"
	"fmt"

	modbusIface "github.com/tetragramaton/hm310p-go/internal/interface/modbus"
	"go.uber.org/zap"
)

type sessionState uint8

const (
	stateUninitialized sessionState = iota
	stateReady
	stateClosed
)

var errShortResponse = errors.New("short response")

// Session is the live handle to one power supply. It is not safe for
// concurrent use: callers sharing a session must serialise access, since the
// serial line carries one exchange at a time. The zero value is not ready.
type Session struct {
	bus       modbusIface.Client
	log       *zap.Logger
	unitID    byte
	model     uint16
	precision PrecisionTable
	limits    Limits
	state     sessionState
}

// Option configures a Session at Open.
type Option func(*Session)

// WithLogger sets the logger used for transaction tracing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUnitID records the slave id the transport was configured for.
func WithUnitID(id byte) Option {
	return func(s *Session) { s.unitID = id }
}

// Open runs the handshake over bus: it reads the model and the decimals
// register and derives the precision table and bounds. On failure the
// transport is left open for the caller to close.
func Open(bus modbusIface.Client, opts ...Option) (*Session, error) {
	s := &Session{
		bus:    bus,
		log:    zap.NewNop(),
		unitID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	model, err := s.readWord(RegModel)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	decimals, err := s.readWord(RegDecimals)
	if err != nil {
		return nil, fmt.Errorf("read decimals: %w", err)
	}

	s.model = model
	s.precision = ParsePrecision(decimals)
	s.limits = LimitsFor(model)
	s.state = stateReady

	s.log.Info("psu session ready",
		zap.Uint8("unit_id", s.unitID),
		zap.Uint16("model", s.model),
		zap.Stringer("precision", s.precision),
		zap.Float64("max_current", s.limits.Current.Max),
		zap.Float64("max_power", s.limits.Power.Max))
	return s, nil
}

// Close releases the transport. Further operations fail with ErrClosed.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	if s.bus == nil {
		return nil
	}
	return s.bus.Close()
}

func (s *Session) ready() error {
	switch s.state {
	case stateReady:
		return nil
	case stateClosed:
		return ErrClosed
	}
	return ErrNotReady
}

// Model returns the model code read at Open.
func (s *Session) Model() uint16 { return s.model }

// UnitID returns the slave id of the device.
func (s *Session) UnitID() byte { return s.unitID }

// Precision returns the decimals table read at Open.
func (s *Session) Precision() PrecisionTable { return s.precision }

// Limits returns the bounds derived at Open.
func (s *Session) Limits() Limits { return s.limits }

// GetVoltage reads the voltage of channel c.
func (s *Session) GetVoltage(c Channel) (float64, error) { return s.get(c, Voltage) }

// SetVoltage writes the voltage of channel c.
func (s *Session) SetVoltage(c Channel, v float64) error { return s.set(c, Voltage, v) }

// GetCurrent reads the current of channel c.
func (s *Session) GetCurrent(c Channel) (float64, error) { return s.get(c, Current) }

// SetCurrent writes the current of channel c.
func (s *Session) SetCurrent(c Channel, v float64) error { return s.set(c, Current, v) }

// GetPower reads the 32-bit power value of channel c.
func (s *Session) GetPower(c Channel) (float64, error) { return s.get(c, Power) }

// SetPower writes the 32-bit power value of channel c.
func (s *Session) SetPower(c Channel, v float64) error { return s.set(c, Power, v) }

// GetOVP reads the over-voltage protection threshold.
func (s *Session) GetOVP() (float64, error) { return s.GetVoltage(Protection) }

// SetOVP writes the over-voltage protection threshold.
func (s *Session) SetOVP(v float64) error { return s.SetVoltage(Protection, v) }

// GetOCP reads the over-current protection threshold.
func (s *Session) GetOCP() (float64, error) { return s.GetCurrent(Protection) }

// SetOCP writes the over-current protection threshold.
func (s *Session) SetOCP(v float64) error { return s.SetCurrent(Protection, v) }

// GetOPP reads the over-power protection threshold.
func (s *Session) GetOPP() (float64, error) { return s.GetPower(Protection) }

// SetOPP writes the over-power protection threshold.
func (s *Session) SetOPP(v float64) error { return s.SetPower(Protection, v) }

// SetOPPFromOutput sets the over-power threshold to the product of the output
// voltage and current, both read fresh from the device, and returns it.
func (s *Session) SetOPPFromOutput() (float64, error) {
	v, err := s.GetVoltage(Output)
	if err != nil {
		return 0, err
	}
	i, err := s.GetCurrent(Output)
	if err != nil {
		return 0, err
	}
	p := v * i
	if err := s.SetOPP(p); err != nil {
		return 0, err
	}
	return p, nil
}

// GetPowerState reads the output switch. A register value other than 0 or 1
// yields Invalid together with an error matching ErrInvalidPowerState.
func (s *Session) GetPowerState() (PowerState, error) {
	if err := s.ready(); err != nil {
		return Invalid, err
	}
	raw, err := s.readWord(RegPowerSwitch)
	if err != nil {
		return Invalid, err
	}
	state := powerStateFromWire(raw)
	if state == Invalid {
		return Invalid, fmt.Errorf("%w: switch register holds %d", ErrInvalidPowerState, raw)
	}
	return state, nil
}

// SetPowerState switches the output. Only Off and On are accepted.
func (s *Session) SetPowerState(state PowerState) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !state.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPowerState, uint16(state))
	}
	return s.writeWord(RegPowerSwitch, uint16(state))
}

// TogglePowerState flips the output switch and returns the new state. It
// refuses to write when the current state reads Invalid.
func (s *Session) TogglePowerState() (PowerState, error) {
	current, err := s.GetPowerState()
	if err != nil {
		return Invalid, err
	}
	next, err := current.Opposite()
	if err != nil {
		return Invalid, err
	}
	if err := s.SetPowerState(next); err != nil {
		return Invalid, err
	}
	return next, nil
}

// SetVoltageAndCurrentOfChannelList writes voltage and current to every named
// channel with one two-register transaction each, in list order, duplicates
// once. Names, values and register layout are all validated before the first
// write. A transport failure midway leaves earlier channels updated.
func (s *Session) SetVoltageAndCurrentOfChannelList(names []string, voltage, current float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	channels, err := ValidateChannels(names, Voltage, Current)
	if err != nil {
		return err
	}
	return s.setVoltageAndCurrent(channels, voltage, current)
}

func (s *Session) setVoltageAndCurrent(channels []Channel, voltage, current float64) error {
	if err := s.limits.Voltage.Check(voltage, "voltage"); err != nil {
		return err
	}
	if err := s.limits.Current.Check(current, "current"); err != nil {
		return err
	}
	wireV, err := scaleFor(voltage, s.precision.Voltage, Word, "voltage")
	if err != nil {
		return err
	}
	wireI, err := scaleFor(current, s.precision.Current, Word, "current")
	if err != nil {
		return err
	}

	targets := make([]Register, 0, len(channels))
	for _, c := range channels {
		vReg, err := Resolve(c, Voltage)
		if err != nil {
			return err
		}
		iReg, err := Resolve(c, Current)
		if err != nil {
			return err
		}
		if !vReg.Writable() {
			return &ReadOnlyError{Register: vReg}
		}
		if !iReg.Writable() {
			return &ReadOnlyError{Register: iReg}
		}
		if iReg.Address != vReg.Address+1 {
			return &UnsupportedQuantityError{Channel: c, Key: "voltage+current pair"}
		}
		targets = append(targets, vReg)
	}

	for _, reg := range targets {
		if err := s.writeWords(reg, uint16(wireV), uint16(wireI)); err != nil {
			return err
		}
	}
	return nil
}

// Reset switches the output off and zeroes voltage and current on Preset and M1..M6.
func (s *Session) Reset() error {
	if err := s.SetPowerState(Off); err != nil {
		return err
	}
	return s.setVoltageAndCurrent(settableChannels(), s.limits.Voltage.Min, s.limits.Current.Min)
}

// SetSafeOutputState writes voltage and current to Preset and M1..M6, so
// recalling any memory slot cannot exceed them.
func (s *Session) SetSafeOutputState(voltage, current float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.setVoltageAndCurrent(settableChannels(), voltage, current)
}

func settableChannels() []Channel {
	return append([]Channel{Preset}, MemoryChannels()...)
}

// GetTimeSpan reads the raw time-span word of Preset or a memory channel.
func (s *Session) GetTimeSpan(c Channel) (uint16, error) { return s.ReadRaw(c, TimeSpan) }

// SetTimeSpan writes the raw time-span word of Preset or a memory channel.
func (s *Session) SetTimeSpan(c Channel, v uint16) error { return s.WriteRaw(c, TimeSpan, v) }

// GetEnabled reports whether memory channel c takes part in list mode.
func (s *Session) GetEnabled(c Channel) (bool, error) {
	v, err := s.ReadRaw(c, Enable)
	return v != 0, err
}

// SetEnabled includes or excludes memory channel c from list mode.
func (s *Session) SetEnabled(c Channel, enabled bool) error {
	var v uint16
	if enabled {
		v = 1
	}
	return s.WriteRaw(c, Enable, v)
}

// GetNextOffset reads the raw next-offset word of memory channel c.
func (s *Session) GetNextOffset(c Channel) (uint16, error) { return s.ReadRaw(c, NextOffset) }

// GetModel reads the model register.
func (s *Session) GetModel() (uint16, error) { return s.ReadRaw(Info, Model) }

// GetClassDetail reads the class-detail register.
func (s *Session) GetClassDetail() (uint16, error) { return s.ReadRaw(Info, ClassDetail) }

// GetDecimals reads the decimals register unparsed.
func (s *Session) GetDecimals() (uint16, error) { return s.ReadRaw(Info, Decimals) }

// GetSlaveAddress reads the communication address of the device.
func (s *Session) GetSlaveAddress() (uint16, error) { return s.ReadRaw(Info, SlaveAddress) }

// GetProtectStatus reads which protections have fired.
func (s *Session) GetProtectStatus() (ProtectStatus, error) {
	v, err := s.ReadRaw(Info, Protect)
	return ProtectStatus(v), err
}

// ReadRaw reads an unscaled single-word quantity.
func (s *Session) ReadRaw(c Channel, kind Quantity) (uint16, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	reg, err := Resolve(c, kind)
	if err != nil {
		return 0, err
	}
	if reg.Width != Word {
		return 0, &UnsupportedQuantityError{Channel: c, Quantity: kind}
	}
	return s.readWord(reg)
}

// WriteRaw writes an unscaled single-word quantity.
func (s *Session) WriteRaw(c Channel, kind Quantity, v uint16) error {
	if err := s.ready(); err != nil {
		return err
	}
	reg, err := Resolve(c, kind)
	if err != nil {
		return err
	}
	if reg.Width != Word {
		return &UnsupportedQuantityError{Channel: c, Quantity: kind}
	}
	if !reg.Writable() {
		return &ReadOnlyError{Register: reg}
	}
	return s.writeWord(reg, v)
}

func (s *Session) get(c Channel, kind Quantity) (float64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	reg, err := Resolve(c, kind)
	if err != nil {
		return 0, err
	}
	decimals, _ := s.precision.For(kind)

	var raw uint32
	if reg.Width == Long {
		raw, err = s.readLong(reg)
	} else {
		var w uint16
		w, err = s.readWord(reg)
		raw = uint32(w)
	}
	if err != nil {
		return 0, err
	}
	return ScaleDown(raw, decimals), nil
}

func (s *Session) set(c Channel, kind Quantity, value float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	reg, err := Resolve(c, kind)
	if err != nil {
		return err
	}
	if !reg.Writable() {
		return &ReadOnlyError{Register: reg}
	}
	bounds, _ := s.limits.For(kind)
	label := fmt.Sprintf("%s %s", c, kind)
	if err := bounds.Check(value, label); err != nil {
		return err
	}
	decimals, _ := s.precision.For(kind)
	raw, err := scaleFor(value, decimals, reg.Width, label)
	if err != nil {
		return err
	}

	if reg.Width == Long {
		hi, lo := splitLong(raw)
		return s.writeWords(reg, hi, lo)
	}
	return s.writeWord(reg, uint16(raw))
}

func (s *Session) readWord(reg Register) (uint16, error) {
	words, err := s.readWords(reg, 1)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

func (s *Session) readLong(reg Register) (uint32, error) {
	words, err := s.readWords(reg, 2)
	if err != nil {
		return 0, err
	}
	return joinLong(words[0], words[1]), nil
}

func (s *Session) readWords(reg Register, count uint16) ([]uint16, error) {
	res, err := s.bus.ReadHoldingRegisters(reg.Address, count)
	if err != nil {
		return nil, &CommError{Op: "read", Address: reg.Address, Err: err}
	}
	if len(res) < int(count)*2 {
		return nil, &CommError{Op: "read", Address: reg.Address, Err: errShortResponse}
	}
	words := make([]uint16, count)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(res[i*2:])
	}
	s.log.Debug("read registers",
		zap.Stringer("register", reg),
		zap.Uint16s("values", words))
	return words, nil
}

func (s *Session) writeWord(reg Register, v uint16) error {
	if _, err := s.bus.WriteSingleRegister(reg.Address, v); err != nil {
		return &CommError{Op: "write", Address: reg.Address, Err: err}
	}
	s.log.Debug("wrote register",
		zap.Stringer("register", reg),
		zap.Uint16("value", v))
	return nil
}

// writeWords writes consecutive words starting at reg, high word first for Long values.
func (s *Session) writeWords(reg Register, words ...uint16) error {
	buf := make([]byte, 2*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint16(buf[i*2:], w)
	}
	if _, err := s.bus.WriteMultipleRegisters(reg.Address, uint16(len(words)), buf); err != nil {
		return &CommError{Op: "write", Address: reg.Address, Err: err}
	}
	s.log.Debug("wrote registers",
		zap.Stringer("register", reg),
		zap.Uint16s("values", words))
	return nil
}
