package serialport

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// USB bridge ids the HM3xxP family ships with (WCH CH340).
const (
	bridgeVID = "1A86"
	bridgePID = "7523"
)

// Port is one serial device found on the host.
type Port struct {
	Name      string `json:"name" yaml:"name"`
	USB       bool   `json:"usb" yaml:"usb"`
	VID       string `json:"vid,omitempty" yaml:"vid,omitempty"`
	PID       string `json:"pid,omitempty" yaml:"pid,omitempty"`
	Serial    string `json:"serial,omitempty" yaml:"serial,omitempty"`
	Product   string `json:"product,omitempty" yaml:"product,omitempty"`
	LikelyPSU bool   `json:"likely_psu" yaml:"likely_psu"`
}

// List enumerates serial ports, falling back to bare names when USB details
// are unavailable on this platform.
func List() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		names, err := serial.GetPortsList()
		if err != nil {
			return nil, fmt.Errorf("list serial ports: %w", err)
		}
		ports := make([]Port, 0, len(names))
		for _, n := range names {
			ports = append(ports, Port{Name: n})
		}
		return ports, nil
	}

	ports := make([]Port, 0, len(details))
	for _, d := range details {
		ports = append(ports, fromDetails(d))
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}

func fromDetails(d *enumerator.PortDetails) Port {
	return Port{
		Name:      d.Name,
		USB:       d.IsUSB,
		VID:       strings.ToUpper(d.VID),
		PID:       strings.ToUpper(d.PID),
		Serial:    d.SerialNumber,
		Product:   d.Product,
		LikelyPSU: d.IsUSB && strings.EqualFold(d.VID, bridgeVID) && strings.EqualFold(d.PID, bridgePID),
	}
}

// Exists reports whether name is among the host's serial ports.
func Exists(name string) (bool, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return false, fmt.Errorf("list serial ports: %w", err)
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
