// Package mqtt provides the MQTT client TaskHub Core uses to publish
// change events.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The service only publishes. Consumers (notification workers, dashboards,
// search indexers) subscribe to {prefix}/events/# on the same broker.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().Event("task", "created")
//	err = client.Publish(topic, payload, 1, false)
package mqtt
