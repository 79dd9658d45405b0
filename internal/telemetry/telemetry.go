// Package telemetry holds the MQTT payloads exchanged between the PSU adapter
// and the discovery core.
package telemetry

import (
	"fmt"
	"strings"

	"github.com/tetragramaton/hm310p-go/internal/psu"
)

// Capabilities announced by the PSU adapter.
const (
	CapVoltage = "sensor.voltage"
	CapCurrent = "sensor.current"
	CapPower   = "sensor.power"
	CapSwitch  = "switch.power"
)

const topicRoot = "smh"

func MetaTopic(deviceID string) string  { return fmt.Sprintf("%s/%s/meta", topicRoot, deviceID) }
func StateTopic(deviceID string) string { return fmt.Sprintf("%s/%s/state", topicRoot, deviceID) }
func SetTopic(deviceID string) string   { return fmt.Sprintf("%s/%s/set", topicRoot, deviceID) }

// MetaWildcard matches the meta topic of every device.
const MetaWildcard = topicRoot + "/+/meta"

type Meta struct {
	DeviceID string   `json:"device_id"`
	Model    string   `json:"model,omitempty"`
	Area     string   `json:"area,omitempty"`
	Caps     []string `json:"caps"`
}

type SensorState struct {
	Ts    int64    `json:"ts"`
	Cap   string   `json:"cap"`
	Unit  string   `json:"unit,omitempty"`
	Value *float64 `json:"value,omitempty"`
	State string   `json:"state,omitempty"`
}

// SetCommand is accepted on the set topic. Absent fields are left untouched.
type SetCommand struct {
	PowerState string   `json:"powerstate,omitempty"`
	Voltage    *float64 `json:"voltage,omitempty"`
	Current    *float64 `json:"current,omitempty"`
}

// Toggle is the powerstate value that flips the output switch.
const Toggle = "toggle"

// Validate checks the power state keyword. Value ranges are checked by the
// device session.
func (c SetCommand) Validate() error {
	if c.PowerState == "" || strings.EqualFold(c.PowerState, Toggle) {
		return nil
	}
	_, err := psu.ParsePowerState(c.PowerState)
	return err
}

// ModelName renders a model code for the meta announcement.
func ModelName(code uint16) string {
	if code == psu.ModelHM310P {
		return "HM310P"
	}
	return fmt.Sprintf("HM3xxP (%d)", code)
}
