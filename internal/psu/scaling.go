package psu

import (
	"fmt"
	"math"
)

// Decimal masks and shifts of the decimals register.
const (
	maskDecimalsVoltage  uint16 = 0x0F00
	maskDecimalsCurrent  uint16 = 0x00F0
	maskDecimalsPower    uint16 = 0x000F
	shiftDecimalsVoltage        = 8
	shiftDecimalsCurrent        = 4
	shiftDecimalsPower          = 0
)

// PrecisionTable holds the number of fractional digits the device uses per quantity.
type PrecisionTable struct {
	Voltage uint8 `json:"voltage" yaml:"voltage"`
	Current uint8 `json:"current" yaml:"current"`
	Power   uint8 `json:"power" yaml:"power"`
}

// ParsePrecision unpacks the decimals register.
// 0x0233 means 2 voltage, 3 current and 3 power decimals.
func ParsePrecision(raw uint16) PrecisionTable {
	return PrecisionTable{
		Voltage: uint8((raw & maskDecimalsVoltage) >> shiftDecimalsVoltage),
		Current: uint8((raw & maskDecimalsCurrent) >> shiftDecimalsCurrent),
		Power:   uint8((raw & maskDecimalsPower) >> shiftDecimalsPower),
	}
}

// Raw packs the table back into the decimals register layout.
func (p PrecisionTable) Raw() uint16 {
	return uint16(p.Voltage)<<shiftDecimalsVoltage |
		uint16(p.Current)<<shiftDecimalsCurrent |
		uint16(p.Power)<<shiftDecimalsPower
}

// For returns the decimals used for kind. Only voltage, current and power are scaled.
func (p PrecisionTable) For(kind Quantity) (uint8, bool) {
	switch kind {
	case Voltage:
		return p.Voltage, true
	case Current:
		return p.Current, true
	case Power:
		return p.Power, true
	}
	return 0, false
}

func (p PrecisionTable) String() string {
	return fmt.Sprintf("V:%d A:%d W:%d", p.Voltage, p.Current, p.Power)
}

// ScaleUp converts a physical value into its wire integer, round(value * 10^decimals).
// math.Round rounds half away from zero, which is half-up for the non-negative
// values the device accepts.
func ScaleUp(value float64, decimals uint8) uint32 {
	return uint32(math.Round(value * pow10(decimals)))
}

// scaleFor scales value and rejects results a register of width w cannot
// carry. The check runs on the rounded float so nothing wraps on conversion.
func scaleFor(value float64, decimals uint8, w Width, label string) (uint32, error) {
	scaled := math.Round(value * pow10(decimals))
	if scaled < 0 || scaled > float64(maxWire(w)) {
		return 0, &OutOfRangeError{Label: label + " wire value", Value: scaled, Min: 0, Max: float64(maxWire(w))}
	}
	return uint32(scaled), nil
}

// ScaleDown converts a wire integer back into a physical value.
func ScaleDown(raw uint32, decimals uint8) float64 {
	return float64(raw) / pow10(decimals)
}

func pow10(decimals uint8) float64 {
	return math.Pow10(int(decimals))
}

// maxWire is the largest wire value a register of width w can carry.
func maxWire(w Width) uint32 {
	if w == Long {
		return math.MaxUint32
	}
	return math.MaxUint16
}

// splitLong returns the high and low words of v.
func splitLong(v uint32) (hi, lo uint16) {
	return uint16(v >> 16), uint16(v)
}

// joinLong combines a high and a low word.
func joinLong(hi, lo uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}
