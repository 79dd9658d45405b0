package psu

import (
	"fmt"
	"strings"
)

// PowerState is the output switch position.
type PowerState uint16

const (
	Off PowerState = 0x00
	On  PowerState = 0x01
	// Invalid is only ever observed, for a switch register holding neither 0 nor 1.
	Invalid PowerState = 0x02
)

func (s PowerState) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	}
	return "invalid"
}

// Valid reports whether s is Off or On.
func (s PowerState) Valid() bool { return s == Off || s == On }

// Opposite returns On for Off and Off for On.
func (s PowerState) Opposite() (PowerState, error) {
	switch s {
	case Off:
		return On, nil
	case On:
		return Off, nil
	}
	return Invalid, ErrInvalidPowerState
}

// ParsePowerState accepts "on" and "off" in any case.
func ParsePowerState(s string) (PowerState, error) {
	switch strings.ToLower(s) {
	case "on":
		return On, nil
	case "off":
		return Off, nil
	}
	return Invalid, fmt.Errorf("%w: %q", ErrInvalidPowerState, s)
}

func powerStateFromWire(v uint16) PowerState {
	switch PowerState(v) {
	case Off, On:
		return PowerState(v)
	}
	return Invalid
}

// ProtectStatus is the protect-status bit mask.
type ProtectStatus uint16

const (
	ProtectOVP ProtectStatus = 1 << iota
	ProtectOCP
	ProtectOPP
	ProtectOTP
	ProtectSCP
)

var protectNames = []struct {
	bit  ProtectStatus
	name string
}{
	{ProtectOVP, "OVP"},
	{ProtectOCP, "OCP"},
	{ProtectOPP, "OPP"},
	{ProtectOTP, "OTP"},
	{ProtectSCP, "SCP"},
}

// Tripped reports whether any protection fired.
func (p ProtectStatus) Tripped() bool { return p != 0 }

// Has reports whether flag is set.
func (p ProtectStatus) Has(flag ProtectStatus) bool { return p&flag != 0 }

func (p ProtectStatus) String() string {
	if p == 0 {
		return "none"
	}
	var parts []string
	for _, n := range protectNames {
		if p.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if rest := p &^ (ProtectOVP | ProtectOCP | ProtectOPP | ProtectOTP | ProtectSCP); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%04X", uint16(rest)))
	}
	return strings.Join(parts, "|")
}
