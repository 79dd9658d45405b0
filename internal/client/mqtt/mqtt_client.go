package mqtt

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tetragramaton/hm310p-go/internal/config"
	mqttIface "github.com/tetragramaton/hm310p-go/internal/interface/mqtt"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

type mqttClient struct {
	api mqtt.Client
	log *zap.Logger
}

// Options translates cfg into paho client options.
func Options(cfg config.MQTTConfig, log *zap.Logger) (*mqtt.ClientOptions, error) {
	if cfg.URL == "" {
		return nil, errors.New("missing mqtt url")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("missing mqtt client id")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetKeepAlive(30 * time.Second).
		SetConnectTimeout(5 * time.Second).
		SetPingTimeout(3 * time.Second).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("mqtt connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("mqtt connected", zap.String("broker", cfg.URL))
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}
	return opts, nil
}

func NewClient(cfg config.MQTTConfig, log *zap.Logger) (mqttIface.Client, error) {
	opts, err := Options(cfg, log)
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(opts)
	t := client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out after %s", cfg.URL, connectTimeout)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.URL, err)
	}
	return &mqttClient{api: client, log: log}, nil
}

func (c *mqttClient) PublishEvent(message mqttIface.Message) error {
	t := c.api.Publish(message.Topic, message.QoS, message.Retain, message.Payload)
	t.Wait()
	return t.Error()
}

func (c *mqttClient) SubscribeToTopic(sub mqttIface.Subscription) error {
	t := c.api.Subscribe(sub.Topic, sub.QoS, func(_ mqtt.Client, m mqtt.Message) {
		sub.Handler(m.Topic(), m.Payload())
	})
	t.Wait()
	if err := t.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", sub.Topic, err)
	}
	c.log.Debug("subscribed", zap.String("topic", sub.Topic))
	return nil
}

func (c *mqttClient) Close(quiesce uint) error {
	if c.api.IsConnectionOpen() {
		c.api.Disconnect(quiesce)
	}
	return nil
}
