package mqtt

//go:generate mockgen -destination=mocks/mock_mqtt.go -package=mocks . Client

type Message struct {
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
	QoS     byte   `json:"qos"`
	Retain  bool   `json:"retain"`
}

// Handler receives the topic and payload of one incoming message. It runs on
// the client's delivery goroutine.
type Handler func(topic string, payload []byte)

type Subscription struct {
	Topic   string  `json:"topic"`
	QoS     byte    `json:"qos"`
	Handler Handler `json:"-"`
}

// Client is a connected broker session.
type Client interface {
	PublishEvent(message Message) error
	SubscribeToTopic(subscription Subscription) error
	Close(quiesce uint) error
}
