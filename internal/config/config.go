package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MQTTConfig configures the optional MQTT state publisher (disabled by default).
type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Config is the freesleep-bridge service configuration.
type Config struct {
	Pod struct {
		Host string
		Port int
	}
	ScanInterval time.Duration
	Timezone     string
	HTTP         struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}
	MQTT MQTTConfig
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	cfg := &Config{}

	cfg.Pod.Host = getEnv("POD_HOST", "192.168.1.1")
	cfg.Pod.Port = parseInt(getEnv("POD_PORT", "3000"), 3000)
	cfg.ScanInterval = time.Duration(parseInt(getEnv("SCAN_INTERVAL_SECONDS", "30"), 30)) * time.Second
	cfg.Timezone = getEnv("TIMEZONE", "Local")

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// MQTT publisher (for MQTT-based consumers; default disabled)
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "freesleep-bridge")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "freesleep")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "0"), 0))

	return cfg
}

// PodBaseURL returns the base URL of the free-sleep server on the pod.
func (c *Config) PodBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Pod.Host, c.Pod.Port)
}

// Location resolves the configured timezone. Times-of-day in schedules and
// overrides carry no offset and are interpreted in this location.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
