package ha

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tetragramaton/hm310p-go/internal/telemetry"
)

const manufacturer = "Hanmatek"

type Device struct {
	Identifiers   []string `json:"identifiers,omitempty"`
	Manufacturer  string   `json:"manufacturer,omitempty"`
	Model         string   `json:"model,omitempty"`
	Name          string   `json:"name,omitempty"`
	SuggestedArea string   `json:"suggested_area,omitempty"`
}

type SensorConfig struct {
	Name        string                 `json:"name"`
	UniqueID    string                 `json:"unique_id"`
	StateTopic  string                 `json:"state_topic"`
	ValueTpl    string                 `json:"value_template,omitempty"`
	DeviceClass string                 `json:"device_class,omitempty"`
	StateClass  string                 `json:"state_class,omitempty"`
	UnitOfMeas  string                 `json:"unit_of_measurement,omitempty"`
	Device      *Device                `json:"device,omitempty"`
	QoS         int                    `json:"qos,omitempty"`
	Extra       map[string]interface{} `json:"-"`
}

func (c *SensorConfig) Marshal() ([]byte, error) {
	type alias SensorConfig
	return merge(alias(*c), c.Extra)
}

// SwitchConfig drives the output switch through the adapter's set topic.
type SwitchConfig struct {
	Name         string  `json:"name"`
	UniqueID     string  `json:"unique_id"`
	StateTopic   string  `json:"state_topic"`
	CommandTopic string  `json:"command_topic"`
	ValueTpl     string  `json:"value_template,omitempty"`
	PayloadOn    string  `json:"payload_on"`
	PayloadOff   string  `json:"payload_off"`
	StateOn      string  `json:"state_on"`
	StateOff     string  `json:"state_off"`
	Device       *Device `json:"device,omitempty"`
	QoS          int     `json:"qos,omitempty"`
}

func (c *SwitchConfig) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func merge(v any, extra map[string]interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if extra == nil {
		return b, nil
	}
	var base map[string]interface{}
	if err := json.Unmarshal(b, &base); err != nil {
		return nil, err
	}
	for k, v := range extra {
		base[k] = v
	}
	return json.Marshal(base)
}

func TopicSensorConfig(cap, unique string) string {
	return fmt.Sprintf("homeassistant/sensor/%s/%s/config", unique, cap)
}

func TopicSwitchConfig(cap, unique string) string {
	return fmt.Sprintf("homeassistant/switch/%s/%s/config", unique, cap)
}

// Marshaler is implemented by every discovery payload.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Entity is one retained discovery config.
type Entity struct {
	Topic  string
	Config Marshaler
}

type sensorCap struct {
	key         string
	unit        string
	deviceClass string
}

var sensorCaps = map[string]sensorCap{
	telemetry.CapVoltage: {key: "voltage", unit: "V", deviceClass: "voltage"},
	telemetry.CapCurrent: {key: "current", unit: "A", deviceClass: "current"},
	telemetry.CapPower:   {key: "power", unit: "W", deviceClass: "power"},
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Sanitize turns a device id into a discovery object id.
func Sanitize(s string) string {
	return strings.ToLower(unsafeChars.ReplaceAllString(s, "_"))
}

// Discovery returns the discovery configs for the capabilities in meta.
// Unknown capabilities are skipped.
func Discovery(meta telemetry.Meta) []Entity {
	unique := Sanitize(meta.DeviceID)
	device := &Device{
		Identifiers:   []string{meta.DeviceID},
		Manufacturer:  manufacturer,
		Model:         meta.Model,
		Name:          meta.DeviceID,
		SuggestedArea: meta.Area,
	}
	state := telemetry.StateTopic(meta.DeviceID)

	var out []Entity
	for _, c := range meta.Caps {
		if sc, ok := sensorCaps[c]; ok {
			out = append(out, Entity{
				Topic: TopicSensorConfig(sc.key, unique),
				Config: &SensorConfig{
					Name:        fmt.Sprintf("%s %s", meta.DeviceID, sc.key),
					UniqueID:    unique + "_" + sc.key,
					StateTopic:  state,
					ValueTpl:    fmt.Sprintf("{{ value_json.value if value_json.cap == %q else this.state }}", c),
					DeviceClass: sc.deviceClass,
					StateClass:  "measurement",
					UnitOfMeas:  sc.unit,
					Device:      device,
				},
			})
			continue
		}
		if c == telemetry.CapSwitch {
			out = append(out, Entity{
				Topic: TopicSwitchConfig("output", unique),
				Config: &SwitchConfig{
					Name:         fmt.Sprintf("%s output", meta.DeviceID),
					UniqueID:     unique + "_output",
					StateTopic:   state,
					CommandTopic: telemetry.SetTopic(meta.DeviceID),
					ValueTpl:     fmt.Sprintf("{{ value_json.state if value_json.cap == %q else this.state }}", c),
					PayloadOn:    `{"powerstate":"on"}`,
					PayloadOff:   `{"powerstate":"off"}`,
					StateOn:      "on",
					StateOff:     "off",
					Device:       device,
				},
			})
		}
	}
	return out
}
