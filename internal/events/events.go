package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/mqtt"
)

// Entity names used in topics and payloads.
const (
	EntityOrganization = "organization"
	EntityUser         = "user"
	EntityTask         = "task"
)

// Event types.
const (
	TypeCreated             = "created"
	TypeUpdated             = "updated"
	TypeDeleted             = "deleted"
	TypeManagedUsersUpdated = "managed_users_updated"
)

// Event describes one committed change.
type Event struct {
	Type           string    `json:"type"`
	Entity         string    `json:"entity"`
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	ActorID        string    `json:"actor_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop discards every event. Used when MQTT is disabled.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) error { return nil }

// broker is the subset of *mqtt.Client the MQTT publisher needs.
type broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Topics() mqtt.Topics
	QoS() byte
}

// MQTTPublisher publishes events as JSON to {prefix}/events/{entity}/{type}.
type MQTTPublisher struct {
	broker broker
	now    func() time.Time
}

// NewMQTTPublisher returns a publisher backed by client.
func NewMQTTPublisher(client *mqtt.Client) *MQTTPublisher {
	return &MQTTPublisher{broker: client, now: time.Now}
}

// Publish sends e, stamping Timestamp if unset. Events are not retained.
func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = p.now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s %s event: %w", e.Entity, e.Type, err)
	}

	topic := p.broker.Topics().Event(e.Entity, e.Type)
	if err := p.broker.Publish(topic, payload, p.broker.QoS(), false); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}
