package serialport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.bug.st/serial/enumerator"
)

func TestFromDetails(t *testing.T) {
	p := fromDetails(&enumerator.PortDetails{
		Name:         "/dev/ttyUSB0",
		IsUSB:        true,
		VID:          "1a86",
		PID:          "7523",
		SerialNumber: "",
		Product:      "USB Serial",
	})
	assert.True(t, p.LikelyPSU)
	assert.Equal(t, "1A86", p.VID)

	p = fromDetails(&enumerator.PortDetails{Name: "/dev/ttyS0"})
	assert.False(t, p.LikelyPSU)
	assert.False(t, p.USB)

	p = fromDetails(&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "0403", PID: "6001"})
	assert.False(t, p.LikelyPSU)
}
