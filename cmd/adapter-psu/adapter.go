package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tetragramaton/hm310p-go/internal/config"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/psu"
	"github.com/tetragramaton/hm310p-go/internal/telemetry"
	"go.uber.org/zap"
)

// session is the part of *psu.Session the adapter polls and drives.
type session interface {
	Model() uint16
	Limits() psu.Limits
	GetVoltage(c psu.Channel) (float64, error)
	GetCurrent(c psu.Channel) (float64, error)
	GetPower(c psu.Channel) (float64, error)
	SetVoltage(c psu.Channel, v float64) error
	SetCurrent(c psu.Channel, v float64) error
	GetPowerState() (psu.PowerState, error)
	SetPowerState(state psu.PowerState) error
	TogglePowerState() (psu.PowerState, error)
}

// Adapter bridges one PSU session to MQTT. The session is not safe for
// concurrent use, so the poll loop and the set handler share it through mu.
type Adapter struct {
	mu  sync.Mutex
	psu session

	bus mqttIface.Client
	tel config.TelemetryConfig
	log *zap.Logger
}

func NewAdapter(s session, bus mqttIface.Client, tel config.TelemetryConfig, log *zap.Logger) *Adapter {
	return &Adapter{psu: s, bus: bus, tel: tel, log: log.With(zap.String("device", tel.DeviceID))}
}

var caps = []string{telemetry.CapVoltage, telemetry.CapCurrent, telemetry.CapPower, telemetry.CapSwitch}

// Run announces the device, listens for set commands and publishes state
// every telemetry interval until ctx is done.
func (a *Adapter) Run(ctx context.Context) error {
	if a.tel.Interval <= 0 {
		return fmt.Errorf("invalid telemetry interval %s", a.tel.Interval)
	}
	if err := a.Announce(); err != nil {
		return err
	}
	err := a.bus.SubscribeToTopic(mqttIface.Subscription{
		Topic: telemetry.SetTopic(a.tel.DeviceID),
		QoS:   1,
		Handler: func(_ string, payload []byte) {
			if err := a.HandleSet(payload); err != nil {
				a.log.Warn("set command rejected", zap.ByteString("payload", payload), zap.Error(err))
			}
		},
	})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(a.tel.Interval)
	defer ticker.Stop()
	a.log.Info("adapter up", zap.Duration("interval", a.tel.Interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.PublishOnce(now)
		}
	}
}

func (a *Adapter) Announce() error {
	a.mu.Lock()
	model := a.psu.Model()
	a.mu.Unlock()

	meta := telemetry.Meta{
		DeviceID: a.tel.DeviceID,
		Model:    telemetry.ModelName(model),
		Area:     a.tel.Area,
		Caps:     caps,
	}
	if err := a.publish(telemetry.MetaTopic(a.tel.DeviceID), meta, true); err != nil {
		return fmt.Errorf("meta publish: %w", err)
	}
	return nil
}

type reading struct {
	cap  string
	unit string
	get  func(psu.Channel) (float64, error)
}

// PublishOnce reads the output and switch state and publishes one state
// message per capability. A failed read skips that capability only.
func (a *Adapter) PublishOnce(now time.Time) {
	ts := now.Unix()
	var states []telemetry.SensorState

	a.mu.Lock()
	for _, r := range []reading{
		{telemetry.CapVoltage, "V", a.psu.GetVoltage},
		{telemetry.CapCurrent, "A", a.psu.GetCurrent},
		{telemetry.CapPower, "W", a.psu.GetPower},
	} {
		v, err := r.get(psu.Output)
		if err != nil {
			a.log.Warn("read failed", zap.String("cap", r.cap), zap.Error(err))
			continue
		}
		states = append(states, telemetry.SensorState{Ts: ts, Cap: r.cap, Unit: r.unit, Value: &v})
	}
	if state, err := a.psu.GetPowerState(); err != nil {
		a.log.Warn("read failed", zap.String("cap", telemetry.CapSwitch), zap.Error(err))
	} else {
		states = append(states, telemetry.SensorState{Ts: ts, Cap: telemetry.CapSwitch, State: state.String()})
	}
	a.mu.Unlock()

	topic := telemetry.StateTopic(a.tel.DeviceID)
	for _, s := range states {
		if err := a.publish(topic, s, false); err != nil {
			a.log.Warn("publish state", zap.String("cap", s.Cap), zap.Error(err))
		}
	}
}

// HandleSet applies a set command to the Preset channel: voltage, then
// current, then the switch. Both values are range checked before the first
// write.
func (a *Adapter) HandleSet(payload []byte) error {
	var cmd telemetry.SetCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decode set command: %w", err)
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	limits := a.psu.Limits()
	if cmd.Voltage != nil {
		if err := limits.Voltage.Check(*cmd.Voltage, "Preset voltage"); err != nil {
			return err
		}
	}
	if cmd.Current != nil {
		if err := limits.Current.Check(*cmd.Current, "Preset current"); err != nil {
			return err
		}
	}

	if cmd.Voltage != nil {
		if err := a.psu.SetVoltage(psu.Preset, *cmd.Voltage); err != nil {
			return err
		}
	}
	if cmd.Current != nil {
		if err := a.psu.SetCurrent(psu.Preset, *cmd.Current); err != nil {
			return err
		}
	}

	switch {
	case cmd.PowerState == "":
		return nil
	case strings.EqualFold(cmd.PowerState, telemetry.Toggle):
		state, err := a.psu.TogglePowerState()
		if err != nil {
			return err
		}
		a.log.Info("output toggled", zap.Stringer("state", state))
		return nil
	default:
		state, _ := psu.ParsePowerState(cmd.PowerState)
		return a.psu.SetPowerState(state)
	}
}

func (a *Adapter) publish(topic string, payload any, retain bool) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return a.bus.PublishEvent(mqttIface.Message{
		Topic:   topic,
		Payload: data,
		QoS:     1,
		Retain:  retain,
	})
}
