package psu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAddresses(t *testing.T) {
	want := map[string]uint16{
		"power-switch":       0x0001,
		"protect-status":     0x0002,
		"model":              0x0003,
		"class-detail":       0x0004,
		"decimals":           0x0005,
		"output-voltage":     0x0010,
		"output-current":     0x0011,
		"output-power-high":  0x0012,
		"output-power-low":   0x0013,
		"protect-voltage":    0x0020,
		"protect-current":    0x0021,
		"protect-power-high": 0x0022,
		"protect-power-low":  0x0023,
		"preset-voltage":     0x0030,
		"preset-current":     0x0031,
		"preset-time-span":   0x0032,
		"slave-address":      0x9999,
		"m1-voltage":         0x1000,
		"m1-current":         0x1001,
		"m1-time-span":       0x1002,
		"m1-enable":          0x1003,
		"m3-voltage":         0x1020,
		"m6-voltage":         0x1050,
		"m6-current":         0x1051,
		"m6-time-span":       0x1052,
		"m6-enable":          0x1053,
	}
	for name, addr := range want {
		reg, ok := LookupRegister(name)
		require.True(t, ok, name)
		assert.Equal(t, addr, reg.Address, name)
	}
}

func TestRegisterWidth(t *testing.T) {
	for _, name := range []string{"output-power", "protect-power"} {
		reg, ok := LookupRegister(name)
		require.True(t, ok)
		assert.Equal(t, Long, reg.Width, name)
	}
	reg, _ := LookupRegister("output-voltage")
	assert.Equal(t, Word, reg.Width)
}

func TestRegisterAccess(t *testing.T) {
	for _, name := range []string{"model", "decimals", "protect-status", "class-detail", "output-power"} {
		reg, _ := LookupRegister(name)
		assert.False(t, reg.Writable(), name)
	}
	for _, name := range []string{"power-switch", "protect-power", "preset-current", "m2-enable"} {
		reg, _ := LookupRegister(name)
		assert.True(t, reg.Writable(), name)
	}
}

func TestLookupUnknownRegister(t *testing.T) {
	_, ok := LookupRegister("m7-voltage")
	assert.False(t, ok)
}

func TestRegistersReturnsCopy(t *testing.T) {
	all := Registers()
	delete(all, "model")
	_, ok := LookupRegister("model")
	assert.True(t, ok)
}
