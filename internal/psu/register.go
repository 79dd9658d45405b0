package psu

import "fmt"

// Access tells whether a register may be written.
type Access uint8

const (
	ReadOnly Access = iota
	ReadWrite
)

func (a Access) String() string {
	if a == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Width is the number of 16-bit words a register value spans.
type Width uint8

const (
	// Word is a single 16-bit register.
	Word Width = 1
	// Long is a 32-bit value split across two consecutive words, high word first.
	Long Width = 2
)

// Register is a named, fixed address on the holding register space.
type Register struct {
	Name    string
	Address uint16
	Access  Access
	Width   Width
}

func (r Register) String() string {
	return fmt.Sprintf("%s(0x%04X)", r.Name, r.Address)
}

// Writable reports whether the register accepts writes.
func (r Register) Writable() bool { return r.Access == ReadWrite }

// Register addresses of the HM3xxP family.
const (
	AddrPowerSwitch      uint16 = 0x0001
	AddrProtectStatus    uint16 = 0x0002
	AddrModel            uint16 = 0x0003
	AddrClassDetail      uint16 = 0x0004
	AddrDecimals         uint16 = 0x0005
	AddrOutputVoltage    uint16 = 0x0010
	AddrOutputCurrent    uint16 = 0x0011
	AddrOutputPowerHigh  uint16 = 0x0012
	AddrOutputPowerLow   uint16 = 0x0013
	AddrProtectVoltage   uint16 = 0x0020
	AddrProtectCurrent   uint16 = 0x0021
	AddrProtectPowerHigh uint16 = 0x0022
	AddrProtectPowerLow  uint16 = 0x0023
	AddrPresetVoltage    uint16 = 0x0030
	AddrPresetCurrent    uint16 = 0x0031
	AddrPresetTimeSpan   uint16 = 0x0032
	AddrSlaveAddress     uint16 = 0x9999

	// AddrMemoryBase is the voltage register of M1; Mn starts MemoryStride*(n-1) above it.
	AddrMemoryBase uint16 = 0x1000
	MemoryStride   uint16 = 0x0010
)

// Offsets of the memory slot fields relative to the slot's voltage register.
const (
	memVoltageOffset    uint16 = 0
	memCurrentOffset    uint16 = 1
	memTimeSpanOffset   uint16 = 2
	memEnableOffset     uint16 = 3
	memNextOffsetOffset uint16 = 4
)

// MemorySlots is the number of programmable memory channels M1..M6.
const MemorySlots = 6

var (
	RegPowerSwitch   = Register{Name: "power-switch", Address: AddrPowerSwitch, Access: ReadWrite, Width: Word}
	RegProtectStatus = Register{Name: "protect-status", Address: AddrProtectStatus, Access: ReadOnly, Width: Word}
	RegModel         = Register{Name: "model", Address: AddrModel, Access: ReadOnly, Width: Word}
	RegClassDetail   = Register{Name: "class-detail", Address: AddrClassDetail, Access: ReadOnly, Width: Word}
	RegDecimals      = Register{Name: "decimals", Address: AddrDecimals, Access: ReadOnly, Width: Word}
	RegSlaveAddress  = Register{Name: "slave-address", Address: AddrSlaveAddress, Access: ReadWrite, Width: Word}

	// Output voltage and current are writable: the device accepts them as a
	// shortcut for the preset values.
	RegOutputVoltage   = Register{Name: "output-voltage", Address: AddrOutputVoltage, Access: ReadWrite, Width: Word}
	RegOutputCurrent   = Register{Name: "output-current", Address: AddrOutputCurrent, Access: ReadWrite, Width: Word}
	RegOutputPower     = Register{Name: "output-power", Address: AddrOutputPowerHigh, Access: ReadOnly, Width: Long}
	RegOutputPowerHigh = Register{Name: "output-power-high", Address: AddrOutputPowerHigh, Access: ReadOnly, Width: Word}
	RegOutputPowerLow  = Register{Name: "output-power-low", Address: AddrOutputPowerLow, Access: ReadOnly, Width: Word}

	RegProtectVoltage   = Register{Name: "protect-voltage", Address: AddrProtectVoltage, Access: ReadWrite, Width: Word}
	RegProtectCurrent   = Register{Name: "protect-current", Address: AddrProtectCurrent, Access: ReadWrite, Width: Word}
	RegProtectPower     = Register{Name: "protect-power", Address: AddrProtectPowerHigh, Access: ReadWrite, Width: Long}
	RegProtectPowerHigh = Register{Name: "protect-power-high", Address: AddrProtectPowerHigh, Access: ReadWrite, Width: Word}
	RegProtectPowerLow  = Register{Name: "protect-power-low", Address: AddrProtectPowerLow, Access: ReadWrite, Width: Word}

	RegPresetVoltage  = Register{Name: "preset-voltage", Address: AddrPresetVoltage, Access: ReadWrite, Width: Word}
	RegPresetCurrent  = Register{Name: "preset-current", Address: AddrPresetCurrent, Access: ReadWrite, Width: Word}
	RegPresetTimeSpan = Register{Name: "preset-time-span", Address: AddrPresetTimeSpan, Access: ReadWrite, Width: Word}
)

// memoryRegister builds the register of field offset in memory slot n (1-based).
func memoryRegister(n int, field string, offset uint16) Register {
	return Register{
		Name:    fmt.Sprintf("m%d-%s", n, field),
		Address: AddrMemoryBase + MemoryStride*uint16(n-1) + offset,
		Access:  ReadWrite,
		Width:   Word,
	}
}

// registers is the catalogue by name, filled once at package init.
var registers = func() map[string]Register {
	m := make(map[string]Register)
	for _, r := range []Register{
		RegPowerSwitch, RegProtectStatus, RegModel, RegClassDetail, RegDecimals, RegSlaveAddress,
		RegOutputVoltage, RegOutputCurrent, RegOutputPower, RegOutputPowerHigh, RegOutputPowerLow,
		RegProtectVoltage, RegProtectCurrent, RegProtectPower, RegProtectPowerHigh, RegProtectPowerLow,
		RegPresetVoltage, RegPresetCurrent, RegPresetTimeSpan,
	} {
		m[r.Name] = r
	}
	for n := 1; n <= MemorySlots; n++ {
		for _, r := range []Register{
			memoryRegister(n, "voltage", memVoltageOffset),
			memoryRegister(n, "current", memCurrentOffset),
			memoryRegister(n, "time-span", memTimeSpanOffset),
			memoryRegister(n, "enable", memEnableOffset),
			memoryRegister(n, "next-offset", memNextOffsetOffset),
		} {
			m[r.Name] = r
		}
	}
	return m
}()

// LookupRegister returns the register catalogued under name.
func LookupRegister(name string) (Register, bool) {
	r, ok := registers[name]
	return r, ok
}

// Registers returns a copy of the whole catalogue.
func Registers() map[string]Register {
	out := make(map[string]Register, len(registers))
	for k, v := range registers {
		out[k] = v
	}
	return out
}
