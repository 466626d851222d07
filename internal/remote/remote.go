// Package remote receives keypath overrides over MQTT and queues them for the
// UI goroutine.
package remote

import (
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/phanxgames/framebridge"
	"github.com/phanxgames/framebridge/internal/config"
)

// queueSize bounds the overrides buffered between two Drain calls.
const queueSize = 64

// Override binds Provider at Keypath. A nil Provider clears earlier
// overrides at that keypath.
type Override struct {
	Keypath  framebridge.Keypath
	Provider framebridge.ValueProvider
}

// message is the JSON payload published on the override topic.
type message struct {
	Keypath string `json:"keypath"`
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Clear   bool   `json:"clear"`
}

// Decode parses one override payload:
//
//	{"keypath": "Layer 1.Transform.Opacity", "kind": "float", "value": 80}
//	{"keypath": "Layer 1.Transform.Opacity", "clear": true}
func Decode(payload []byte) (Override, error) {
	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Override{}, errors.Wrap(err, "malformed override")
	}
	kp := framebridge.ParseKeypath(m.Keypath)
	if kp.IsEmpty() {
		return Override{}, errors.New("override missing keypath")
	}
	if m.Clear {
		return Override{Keypath: kp}, nil
	}
	kind, ok := framebridge.ParseValueKind(strings.ToLower(strings.TrimSpace(m.Kind)))
	if !ok {
		return Override{}, errors.Errorf("unknown override kind %q", m.Kind)
	}
	v, err := framebridge.DecodeValue(kind, m.Value)
	if err != nil {
		return Override{}, errors.Wrapf(err, "override %s", kp)
	}
	return Override{Keypath: kp, Provider: framebridge.StaticValue(v)}, nil
}

// Subscriber listens on one MQTT topic. Messages arrive on paho's goroutines
// and wait in a bounded queue until Drain runs on the UI goroutine.
type Subscriber struct {
	client    mqtt.Client
	topic     string
	overrides chan Override
	log       zerolog.Logger
}

// NewSubscriber creates a subscriber for cfg. It does not connect.
func NewSubscriber(cfg config.MQTT, logger zerolog.Logger) *Subscriber {
	s := newSubscriber(cfg.Topic, logger)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "framebridge-" + uuid.NewString()
	}
	options := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(s.handleOnConnect).
		SetConnectionLostHandler(s.handleConnectionLost)
	s.client = mqtt.NewClient(options)
	s.log = s.log.With().Str("client_id", clientID).Logger()
	return s
}

func newSubscriber(topic string, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		topic:     topic,
		overrides: make(chan Override, queueSize),
		log:       logger.With().Str("topic", topic).Logger(),
	}
}

// Connect blocks until the broker accepts the connection. The topic is
// subscribed, and resubscribed after reconnects, from the connect handler.
func (s *Subscriber) Connect() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "mqtt connect")
	}
	return nil
}

// Close disconnects, waiting up to 250ms for in-flight work.
func (s *Subscriber) Close() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) handleOnConnect(client mqtt.Client) {
	s.log.Info().Msg("mqtt connected")
	if token := client.Subscribe(s.topic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
		s.log.Error().Err(token.Error()).Msg("mqtt subscribe failed")
	}
}

func (s *Subscriber) handleConnectionLost(_ mqtt.Client, err error) {
	s.log.Warn().Err(err).Msg("mqtt connection lost")
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	o, err := Decode(msg.Payload())
	if err != nil {
		s.log.Warn().Err(err).Uint16("message_id", msg.MessageID()).Msg("override rejected")
		return
	}
	select {
	case s.overrides <- o:
		s.log.Debug().Str("keypath", o.Keypath.String()).Msg("override queued")
	default:
		s.log.Warn().Str("keypath", o.Keypath.String()).Msg("override queue full, dropped")
	}
}

// Drain applies every queued override without blocking and returns how many
// it applied. Call it from the UI goroutine.
func (s *Subscriber) Drain(apply func(Override)) int {
	n := 0
	for {
		select {
		case o := <-s.overrides:
			apply(o)
			n++
		default:
			return n
		}
	}
}
