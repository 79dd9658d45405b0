package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetragramaton/hm310p-go/internal/config"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/interface/mqtt/mocks"
	"github.com/tetragramaton/hm310p-go/internal/psu"
	"github.com/tetragramaton/hm310p-go/internal/telemetry"
	"go.uber.org/zap"
)

type fakeSession struct {
	model   uint16
	v, i, p float64
	state   psu.PowerState
	readErr error
	calls   []string
}

func (f *fakeSession) Model() uint16 { return f.model }

func (f *fakeSession) Limits() psu.Limits { return psu.LimitsFor(f.model) }

func (f *fakeSession) GetVoltage(psu.Channel) (float64, error) { return f.v, f.readErr }

func (f *fakeSession) GetCurrent(psu.Channel) (float64, error) { return f.i, nil }

func (f *fakeSession) GetPower(psu.Channel) (float64, error) { return f.p, nil }

func (f *fakeSession) SetVoltage(c psu.Channel, v float64) error {
	f.calls = append(f.calls, fmt.Sprintf("%s.V=%g", c, v))
	return psu.LimitsFor(f.model).Voltage.Check(v, c.String()+" voltage")
}

func (f *fakeSession) SetCurrent(c psu.Channel, v float64) error {
	f.calls = append(f.calls, fmt.Sprintf("%s.I=%g", c, v))
	return nil
}

func (f *fakeSession) GetPowerState() (psu.PowerState, error) { return f.state, nil }

func (f *fakeSession) SetPowerState(state psu.PowerState) error {
	f.calls = append(f.calls, "power="+state.String())
	f.state = state
	return nil
}

func (f *fakeSession) TogglePowerState() (psu.PowerState, error) {
	next, err := f.state.Opposite()
	if err != nil {
		return psu.Invalid, err
	}
	f.calls = append(f.calls, "toggle")
	f.state = next
	return next, nil
}

func newTestAdapter(t *testing.T, s *fakeSession) (*Adapter, *mocks.MockClient) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockClient(ctrl)
	tel := config.TelemetryConfig{DeviceID: "bench", Area: "lab", Interval: 10 * time.Millisecond}
	return NewAdapter(s, bus, tel, zap.NewNop()), bus
}

func decodeState(t *testing.T, m mqttIface.Message) telemetry.SensorState {
	t.Helper()
	var s telemetry.SensorState
	require.NoError(t, json.Unmarshal(m.Payload, &s))
	return s
}

func TestAnnounce(t *testing.T) {
	a, bus := newTestAdapter(t, &fakeSession{model: psu.ModelHM310P})

	bus.EXPECT().PublishEvent(gomock.Any()).DoAndReturn(func(m mqttIface.Message) error {
		assert.Equal(t, "smh/bench/meta", m.Topic)
		assert.True(t, m.Retain)
		assert.JSONEq(t, `{
			"device_id": "bench",
			"model": "HM310P",
			"area": "lab",
			"caps": ["sensor.voltage", "sensor.current", "sensor.power", "switch.power"]
		}`, string(m.Payload))
		return nil
	})

	require.NoError(t, a.Announce())
}

func TestPublishOnce(t *testing.T) {
	a, bus := newTestAdapter(t, &fakeSession{model: psu.ModelHM310P, v: 12, i: 1.5, p: 18, state: psu.On})

	var got []telemetry.SensorState
	bus.EXPECT().PublishEvent(gomock.Any()).Times(4).DoAndReturn(func(m mqttIface.Message) error {
		assert.Equal(t, "smh/bench/state", m.Topic)
		assert.False(t, m.Retain)
		got = append(got, decodeState(t, m))
		return nil
	})

	a.PublishOnce(time.Unix(1700000000, 0))

	require.Len(t, got, 4)
	assert.Equal(t, telemetry.CapVoltage, got[0].Cap)
	assert.Equal(t, "V", got[0].Unit)
	require.NotNil(t, got[0].Value)
	assert.Equal(t, 12.0, *got[0].Value)
	assert.Equal(t, int64(1700000000), got[0].Ts)
	assert.Equal(t, 1.5, *got[1].Value)
	assert.Equal(t, 18.0, *got[2].Value)
	assert.Equal(t, telemetry.CapSwitch, got[3].Cap)
	assert.Equal(t, "on", got[3].State)
	assert.Nil(t, got[3].Value)
}

func TestPublishOnceSkipsFailedReads(t *testing.T) {
	s := &fakeSession{model: psu.ModelHM310P, state: psu.Off, readErr: errors.New("timeout")}
	a, bus := newTestAdapter(t, s)

	var caps []string
	bus.EXPECT().PublishEvent(gomock.Any()).Times(3).DoAndReturn(func(m mqttIface.Message) error {
		caps = append(caps, decodeState(t, m).Cap)
		return nil
	})

	a.PublishOnce(time.Now())
	assert.Equal(t, []string{telemetry.CapCurrent, telemetry.CapPower, telemetry.CapSwitch}, caps)
}

func TestHandleSet(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		state   psu.PowerState
		calls   []string
		wantErr bool
	}{
		{
			name:    "preset and switch on",
			payload: `{"powerstate":"on","voltage":12,"current":1.5}`,
			state:   psu.Off,
			calls:   []string{"Preset.V=12", "Preset.I=1.5", "power=on"},
		},
		{
			name:    "toggle",
			payload: `{"powerstate":"TOGGLE"}`,
			state:   psu.On,
			calls:   []string{"toggle"},
		},
		{
			name:    "current only",
			payload: `{"current":0.25}`,
			calls:   []string{"Preset.I=0.25"},
		},
		{
			name:    "bad powerstate touches nothing",
			payload: `{"powerstate":"standby","voltage":5}`,
			wantErr: true,
		},
		{
			name:    "voltage out of range touches nothing",
			payload: `{"powerstate":"on","voltage":40,"current":1}`,
			wantErr: true,
		},
		{
			name:    "current out of range leaves voltage alone",
			payload: `{"voltage":5,"current":99}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `on`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSession{model: psu.ModelHM310P, state: tt.state}
			a, _ := newTestAdapter(t, s)

			err := a.HandleSet([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, s.calls)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.calls, s.calls)
		})
	}
}

func TestRunSubscribesAndStops(t *testing.T) {
	s := &fakeSession{model: psu.ModelHM310P, state: psu.Off}
	a, bus := newTestAdapter(t, s)

	var handler mqttIface.Handler
	bus.EXPECT().PublishEvent(gomock.Any()).Return(nil).AnyTimes()
	bus.EXPECT().SubscribeToTopic(gomock.Any()).DoAndReturn(func(sub mqttIface.Subscription) error {
		assert.Equal(t, "smh/bench/set", sub.Topic)
		handler = sub.Handler
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	require.NotNil(t, handler)
	handler("smh/bench/set", []byte(`{"powerstate":"on"}`))
	assert.Equal(t, psu.On, s.state)
}

func TestRunRejectsZeroInterval(t *testing.T) {
	a, _ := newTestAdapter(t, &fakeSession{})
	a.tel.Interval = 0
	assert.Error(t, a.Run(context.Background()))
}
