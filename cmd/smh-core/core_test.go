package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/interface/mqtt/mocks"
	"go.uber.org/zap"
)

func TestHandleMeta(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockClient(ctrl)
	core := NewCore(bus, zap.NewNop())

	var topics []string
	bus.EXPECT().PublishEvent(gomock.Any()).Times(4).DoAndReturn(func(m mqttIface.Message) error {
		assert.True(t, m.Retain)
		topics = append(topics, m.Topic)
		return nil
	})

	err := core.HandleMeta([]byte(`{"device_id":"bench","model":"HM310P","caps":["sensor.voltage","sensor.current","sensor.power","switch.power"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"homeassistant/sensor/bench/voltage/config",
		"homeassistant/sensor/bench/current/config",
		"homeassistant/sensor/bench/power/config",
		"homeassistant/switch/bench/output/config",
	}, topics)
}

func TestHandleMetaContinuesAfterPublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockClient(ctrl)
	core := NewCore(bus, zap.NewNop())

	gomock.InOrder(
		bus.EXPECT().PublishEvent(gomock.Any()).Return(errors.New("not connected")),
		bus.EXPECT().PublishEvent(gomock.Any()).Return(nil),
	)

	require.NoError(t, core.HandleMeta([]byte(`{"device_id":"bench","caps":["sensor.voltage","switch.power"]}`)))
}

func TestHandleMetaRejectsBadPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	core := NewCore(mocks.NewMockClient(ctrl), zap.NewNop())

	assert.Error(t, core.HandleMeta([]byte(`not json`)))
	assert.Error(t, core.HandleMeta([]byte(`{"caps":["sensor.voltage"]}`)))
}

func TestRunSubscribesToMeta(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockClient(ctrl)
	core := NewCore(bus, zap.NewNop())

	bus.EXPECT().SubscribeToTopic(gomock.Any()).DoAndReturn(func(sub mqttIface.Subscription) error {
		assert.Equal(t, "smh/+/meta", sub.Topic)
		assert.NotNil(t, sub.Handler)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, core.Run(ctx))
}
