package psu

import (
	"fmt"
	"strings"
)

// Channel is a logical context in which a quantity is addressed.
type Channel uint8

const (
	Info Channel = iota + 1
	Protection
	Output
	Preset
	M1
	M2
	M3
	M4
	M5
	M6
)

var channelNames = map[Channel]string{
	Info:       "Info",
	Protection: "Protection",
	Output:     "Output",
	Preset:     "Preset",
	M1:         "M1",
	M2:         "M2",
	M3:         "M3",
	M4:         "M4",
	M5:         "M5",
	M6:         "M6",
}

// Channels lists every channel in declaration order.
func Channels() []Channel {
	return []Channel{Info, Protection, Output, Preset, M1, M2, M3, M4, M5, M6}
}

// MemoryChannels lists M1..M6.
func MemoryChannels() []Channel {
	return []Channel{M1, M2, M3, M4, M5, M6}
}

func (c Channel) String() string {
	if n, ok := channelNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Channel(%d)", uint8(c))
}

// Valid reports whether c is one of the declared channels.
func (c Channel) Valid() bool {
	_, ok := channelNames[c]
	return ok
}

// Memory returns the 1-based memory slot of c, or 0 if c is not M1..M6.
func (c Channel) Memory() int {
	if c >= M1 && c <= M6 {
		return int(c-M1) + 1
	}
	return 0
}

// ParseChannel maps a channel name to its Channel. Matching ignores case.
func ParseChannel(name string) (Channel, error) {
	for c, n := range channelNames {
		if strings.EqualFold(n, name) {
			return c, nil
		}
	}
	return 0, &UnknownChannelError{Name: name}
}

// Quantity is the kind of value addressed within a channel.
type Quantity uint8

const (
	Voltage Quantity = iota + 1
	Current
	Power
	PowerHigh
	PowerLow
	TimeSpan
	Enable
	NextOffset
	PowerSwitch
	Protect
	Model
	ClassDetail
	Decimals
	SlaveAddress
)

var quantityNames = map[Quantity]string{
	Voltage:      "voltage",
	Current:      "current",
	Power:        "power",
	PowerHigh:    "power-high",
	PowerLow:     "power-low",
	TimeSpan:     "time-span",
	Enable:       "enable",
	NextOffset:   "next-offset",
	PowerSwitch:  "power-switch",
	Protect:      "protect-status",
	Model:        "model",
	ClassDetail:  "class-detail",
	Decimals:     "decimals",
	SlaveAddress: "slave-address",
}

func (q Quantity) String() string {
	if n, ok := quantityNames[q]; ok {
		return n
	}
	return fmt.Sprintf("Quantity(%d)", uint8(q))
}

// ParseQuantity maps a quantity key such as "voltage" or "time-span" to its Quantity.
func ParseQuantity(key string) (Quantity, bool) {
	for q, n := range quantityNames {
		if n == strings.ToLower(key) {
			return q, true
		}
	}
	return 0, false
}

// channelMap is the capability table of the device family.
var channelMap = func() map[Channel]map[Quantity]Register {
	m := map[Channel]map[Quantity]Register{
		Info: {
			PowerSwitch:  RegPowerSwitch,
			Protect:      RegProtectStatus,
			Model:        RegModel,
			ClassDetail:  RegClassDetail,
			Decimals:     RegDecimals,
			SlaveAddress: RegSlaveAddress,
		},
		Output: {
			Voltage:   RegOutputVoltage,
			Current:   RegOutputCurrent,
			Power:     RegOutputPower,
			PowerHigh: RegOutputPowerHigh,
			PowerLow:  RegOutputPowerLow,
		},
		Protection: {
			Voltage:   RegProtectVoltage,
			Current:   RegProtectCurrent,
			Power:     RegProtectPower,
			PowerHigh: RegProtectPowerHigh,
			PowerLow:  RegProtectPowerLow,
		},
		Preset: {
			Voltage:  RegPresetVoltage,
			Current:  RegPresetCurrent,
			TimeSpan: RegPresetTimeSpan,
		},
	}
	for _, c := range MemoryChannels() {
		n := c.Memory()
		m[c] = map[Quantity]Register{
			Voltage:    memoryRegister(n, "voltage", memVoltageOffset),
			Current:    memoryRegister(n, "current", memCurrentOffset),
			TimeSpan:   memoryRegister(n, "time-span", memTimeSpanOffset),
			Enable:     memoryRegister(n, "enable", memEnableOffset),
			NextOffset: memoryRegister(n, "next-offset", memNextOffsetOffset),
		}
	}
	return m
}()

// Resolve returns the register holding kind on channel c. A Long register
// addresses the high word; the low word follows at Address+1.
func Resolve(c Channel, kind Quantity) (Register, error) {
	quantities, ok := channelMap[c]
	if !ok {
		return Register{}, &UnknownChannelError{Name: c.String()}
	}
	reg, ok := quantities[kind]
	if !ok {
		return Register{}, &UnsupportedQuantityError{Channel: c, Quantity: kind}
	}
	return reg, nil
}

// ResolveName is Resolve for names, as accepted at the CLI and MQTT boundaries.
func ResolveName(channel, kind string) (Register, error) {
	c, err := ParseChannel(channel)
	if err != nil {
		return Register{}, err
	}
	q, ok := ParseQuantity(kind)
	if !ok {
		return Register{}, &UnsupportedQuantityError{Channel: c, Key: kind}
	}
	return Resolve(c, q)
}

// Supports reports whether c carries kind.
func Supports(c Channel, kind Quantity) bool {
	_, err := Resolve(c, kind)
	return err == nil
}
