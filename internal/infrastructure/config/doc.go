// Package config handles loading and validating TaskHub Core configuration.
//
// Values are resolved in three layers: hardcoded defaults, the YAML file,
// then TASKHUB_* environment variables. Validate rejects a configuration
// without a JWT signing secret, so a process can never start unable to
// verify tokens.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//
// Secrets (TASKHUB_JWT_SECRET, TASKHUB_MQTT_PASSWORD) belong in the
// environment, not in the committed config file.
package config
