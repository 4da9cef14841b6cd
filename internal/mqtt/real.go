package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/egg-timer/internal/logic"
)

// BufferCapacity is how many messages are held while the broker is unreachable.
const BufferCapacity = 100

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected are buffered and replayed on
// reconnect; progress events are dropped instead since a newer one always
// follows.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu        sync.Mutex
	held      *backlog
	connected bool
	everUp    bool
}

// NewRealPublisher creates a publisher for the given broker. The
// connection is made in the background and retried until it succeeds.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{
		topic:  Topic,
		held:   newBacklog(BufferCapacity),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	p.connected = true
	reconnect := p.everUp
	p.everUp = true
	pending := p.held.take()
	p.mu.Unlock()

	log.Printf("mqtt: connected")
	for _, m := range pending {
		if err := p.send(m); err != nil {
			log.Printf("mqtt: replay failed: %v", err)
		}
	}

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err := p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
			log.Printf("mqtt: reconnect event failed: %v", err)
		}
	}
}

func (p *RealPublisher) onConnectionLost(c paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Publish sends a countdown event to the MQTT broker.
func (p *RealPublisher) Publish(event TimerEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 for progress, QoS 1 for finished: the alarm matters.
	m := bufferedMsg{topic: p.topic, payload: payload}
	if event.Type == logic.EventFinished {
		m.qos = 1
	}
	if p.hold(m, event.Type == logic.EventProgress) {
		return nil
	}
	if err := p.send(m); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	m := bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained}
	if p.hold(m, false) {
		return nil
	}
	if err := p.send(m); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// hold buffers m while disconnected. Returns true if m was not sent now.
func (p *RealPublisher) hold(m bufferedMsg, discard bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return false
	}
	if !discard {
		p.held.add(m)
	}
	return true
}

func (p *RealPublisher) send(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout on %s", m.topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
