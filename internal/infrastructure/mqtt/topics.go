package mqtt

import "fmt"

// DefaultTopicPrefix is the root of every topic when none is configured.
const DefaultTopicPrefix = "taskhub"

// Topics builds TaskHub topic names under a common prefix.
//
//	topics := mqtt.Topics{Prefix: "taskhub"}
//	topics.Event("task", "created")
//	// Returns: "taskhub/events/task/created"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Event returns the topic for a change event on an entity.
//
// Example: taskhub/events/task/created
func (t Topics) Event(entity, eventType string) string {
	return fmt.Sprintf("%s/events/%s/%s", t.prefix(), entity, eventType)
}

// AllEvents returns the wildcard matching every change event.
//
// Example: taskhub/events/#
func (t Topics) AllEvents() string {
	return t.prefix() + "/events/#"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: taskhub/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}
