package announce

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// announceQueueSize bounds the outbound queue. When the broker cannot keep
// up, the oldest-unsent announcements are dropped rather than stalling the
// recognition pipeline.
const announceQueueSize = 16

// MQTTConfig holds settings for the MQTT announcement channel.
type MQTTConfig struct {
	Broker   string
	Port     int
	ClientID string
	Username string
	Password string
	Topic    string
}

// message is the JSON payload published per announcement.
type message struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// MQTTAnnouncer publishes announcements to an MQTT topic consumed by the
// text-to-speech collaborator. Publishing happens on a background
// goroutine fed by a bounded queue, so Announce never blocks.
type MQTTAnnouncer struct {
	config MQTTConfig
	client mqtt.Client
	queue  chan message
	done   chan struct{}
}

// NewMQTTAnnouncer connects to the broker and starts the publish loop.
func NewMQTTAnnouncer(cfg MQTTConfig) (*MQTTAnnouncer, error) {
	if cfg.Topic == "" {
		cfg.Topic = "mudra/announce"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "mudra"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("Announce channel connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		return nil, fmt.Errorf("connect announce broker: %v", token.Error())
	}

	a := &MQTTAnnouncer{
		config: cfg,
		client: client,
		queue:  make(chan message, announceQueueSize),
		done:   make(chan struct{}),
	}
	go a.publishLoop()

	log.WithField("broker", cfg.Broker).Info("Announce channel connected")
	return a, nil
}

// Announce queues the text for publishing. If the queue is full the
// announcement is dropped and logged.
func (a *MQTTAnnouncer) Announce(text string, lang language.Tag) {
	select {
	case a.queue <- message{Text: text, Language: lang.String()}:
	default:
		log.WithField("text", text).Warn("Announce queue full, dropping announcement")
	}
}

// Close stops the publish loop and disconnects from the broker.
func (a *MQTTAnnouncer) Close() error {
	close(a.done)
	a.client.Disconnect(250)
	return nil
}

func (a *MQTTAnnouncer) publishLoop() {
	for {
		select {
		case <-a.done:
			return
		case msg := <-a.queue:
			payload, err := json.Marshal(msg)
			if err != nil {
				log.WithError(err).Error("Failed to marshal announcement")
				continue
			}
			// QoS 0, no token wait: delivery is best effort by contract.
			a.client.Publish(a.config.Topic, 0, false, payload)
		}
	}
}
