package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tetragramaton/hm310p-go/internal/ha"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"github.com/tetragramaton/hm310p-go/internal/telemetry"
	"go.uber.org/zap"
)

// Core turns adapter meta announcements into Home Assistant discovery configs.
type Core struct {
	bus mqttIface.Client
	log *zap.Logger
}

func NewCore(bus mqttIface.Client, log *zap.Logger) *Core {
	return &Core{bus: bus, log: log}
}

func (c *Core) Run(ctx context.Context) error {
	err := c.bus.SubscribeToTopic(mqttIface.Subscription{
		Topic: telemetry.MetaWildcard,
		QoS:   1,
		Handler: func(topic string, payload []byte) {
			if err := c.HandleMeta(payload); err != nil {
				c.log.Warn("bad meta", zap.String("topic", topic), zap.Error(err))
			}
		},
	})
	if err != nil {
		return err
	}
	c.log.Info("smh-core up; waiting for meta")
	<-ctx.Done()
	return nil
}

// HandleMeta publishes one retained discovery config per known capability.
// A failed publish is logged and the remaining configs are still sent.
func (c *Core) HandleMeta(payload []byte) error {
	var meta telemetry.Meta
	if err := json.Unmarshal(payload, &meta); err != nil {
		return fmt.Errorf("decode meta: %w", err)
	}
	if meta.DeviceID == "" {
		return errors.New("meta without device_id")
	}

	entities := ha.Discovery(meta)
	for _, e := range entities {
		b, err := e.Config.Marshal()
		if err != nil {
			c.log.Warn("marshal discovery config", zap.String("topic", e.Topic), zap.Error(err))
			continue
		}
		if err := c.bus.PublishEvent(mqttIface.Message{
			Topic:   e.Topic,
			Payload: b,
			QoS:     1,
			Retain:  true,
		}); err != nil {
			c.log.Warn("publish discovery config", zap.String("topic", e.Topic), zap.Error(err))
		}
	}
	c.log.Info("HA discovery published",
		zap.String("device", meta.DeviceID),
		zap.Strings("caps", meta.Caps),
		zap.Int("entities", len(entities)))
	return nil
}
