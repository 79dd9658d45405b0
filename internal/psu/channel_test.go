package psu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		channel Channel
		kind    Quantity
		addr    uint16
		width   Width
	}{
		{Output, Voltage, 0x0010, Word},
		{Output, Current, 0x0011, Word},
		{Output, Power, 0x0012, Long},
		{Output, PowerHigh, 0x0012, Word},
		{Output, PowerLow, 0x0013, Word},
		{Protection, Voltage, 0x0020, Word},
		{Protection, Current, 0x0021, Word},
		{Protection, Power, 0x0022, Long},
		{Protection, PowerLow, 0x0023, Word},
		{Preset, Voltage, 0x0030, Word},
		{Preset, Current, 0x0031, Word},
		{Preset, TimeSpan, 0x0032, Word},
		{Info, Model, 0x0003, Word},
		{Info, Decimals, 0x0005, Word},
		{Info, PowerSwitch, 0x0001, Word},
		{Info, SlaveAddress, 0x9999, Word},
		{M1, Voltage, 0x1000, Word},
		{M1, Enable, 0x1003, Word},
		{M1, NextOffset, 0x1004, Word},
		{M2, Current, 0x1011, Word},
		{M4, TimeSpan, 0x1032, Word},
		{M6, Voltage, 0x1050, Word},
		{M6, Enable, 0x1053, Word},
	}
	for _, tt := range tests {
		t.Run(tt.channel.String()+"/"+tt.kind.String(), func(t *testing.T) {
			reg, err := Resolve(tt.channel, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.addr, reg.Address)
			assert.Equal(t, tt.width, reg.Width)

			again, err := Resolve(tt.channel, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, reg, again)
		})
	}
}

func TestResolveUnsupportedQuantity(t *testing.T) {
	tests := []struct {
		channel Channel
		kind    Quantity
	}{
		{Info, Voltage},
		{Preset, Power},
		{Output, TimeSpan},
		{Protection, Enable},
		{M3, Power},
		{Preset, Enable},
	}
	for _, tt := range tests {
		_, err := Resolve(tt.channel, tt.kind)
		var uq *UnsupportedQuantityError
		require.True(t, errors.As(err, &uq), "%s/%s", tt.channel, tt.kind)
		assert.Equal(t, tt.channel, uq.Channel)
		assert.Equal(t, tt.kind, uq.Quantity)
	}
}

func TestResolveUnknownChannel(t *testing.T) {
	_, err := Resolve(Channel(42), Voltage)
	var uc *UnknownChannelError
	assert.True(t, errors.As(err, &uc))
}

func TestResolveTotal(t *testing.T) {
	for _, c := range Channels() {
		for q := range quantityNames {
			_, err := Resolve(c, q)
			if err == nil {
				continue
			}
			var uq *UnsupportedQuantityError
			assert.True(t, errors.As(err, &uq), "%s/%s: %v", c, q, err)
		}
	}
}

func TestResolveName(t *testing.T) {
	reg, err := ResolveName("preset", "current")
	require.NoError(t, err)
	assert.Equal(t, AddrPresetCurrent, reg.Address)

	_, err = ResolveName("Bogus", "voltage")
	var uc *UnknownChannelError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "Bogus", uc.Name)

	_, err = ResolveName("M1", "frequency")
	var uq *UnsupportedQuantityError
	require.True(t, errors.As(err, &uq))
	assert.Contains(t, err.Error(), "frequency")
}

func TestParseChannel(t *testing.T) {
	for _, c := range Channels() {
		got, err := ParseChannel(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseChannel("protection")
	require.NoError(t, err)
	assert.Equal(t, Protection, got)

	_, err = ParseChannel("M7")
	assert.Error(t, err)
}

func TestChannelMemory(t *testing.T) {
	assert.Equal(t, 1, M1.Memory())
	assert.Equal(t, 6, M6.Memory())
	assert.Equal(t, 0, Preset.Memory())
	assert.True(t, M3.Valid())
	assert.False(t, Channel(0).Valid())
	assert.Equal(t, "Channel(0)", Channel(0).String())
}
