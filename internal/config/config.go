// Package config loads controller configuration from environment variables,
// with an optional YAML override file for LANs that run more than one Sonos
// system side by side.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the controller and its collaborators need.
type Config struct {
	// SeedRoomName selects a specific local system when multiple coexist
	// on one LAN (§6.3). Empty means "take the first discovered speaker".
	SeedRoomName string

	// DiscoveryTimeout bounds name-based and unsolicited discovery (§5: 5s).
	DiscoveryTimeout time.Duration

	// SubscriptionTimeout is the GENA subscription duration requested (§4.A: 300s).
	SubscriptionTimeout time.Duration

	// RenewalInterval is how often a Subscription Worker attempts renewal (§4.A: 60s).
	RenewalInterval time.Duration

	// RecoveryPace bounds how often the Controller retries rediscovery while
	// the topology Worker handle is absent (§4.E/§5: 1 Hz).
	RecoveryPace time.Duration

	// CommandQueueCapacity is the Façade's command channel buffer (§4.G: 32).
	CommandQueueCapacity int

	// CallbackHost/CallbackPort are where the GENA client listens for NOTIFY
	// callbacks from subscribed devices.
	CallbackHost string
	CallbackPort int
}

// Default returns the configuration spec.md's fixed constants describe.
func Default() Config {
	return Config{
		SeedRoomName:         "",
		DiscoveryTimeout:     5 * time.Second,
		SubscriptionTimeout:  300 * time.Second,
		RenewalInterval:      60 * time.Second,
		RecoveryPace:         1 * time.Second,
		CommandQueueCapacity: 32,
		CallbackHost:         "0.0.0.0",
		CallbackPort:         0, // 0 means pick an ephemeral port
	}
}

// fileOverride is the subset of Config a YAML file is allowed to override.
// Discovery/renewal/recovery timings are protocol constants spec.md fixes;
// only the LAN-selection and callback knobs are meant to vary per household.
type fileOverride struct {
	SeedRoomName string `yaml:"seed_room_name"`
	CallbackHost string `yaml:"callback_host"`
	CallbackPort int    `yaml:"callback_port"`
}

// Load reads environment variables over the defaults, then applies an
// optional YAML file (ZONECTL_CONFIG, default "./zonectl.yaml") if present.
func Load() (Config, error) {
	cfg := Default()

	if v := envString("ZONECTL_SEED_ROOM", ""); v != "" {
		cfg.SeedRoomName = v
	}
	cfg.DiscoveryTimeout = envDuration("ZONECTL_DISCOVERY_TIMEOUT_MS", cfg.DiscoveryTimeout)
	cfg.SubscriptionTimeout = envDuration("ZONECTL_SUBSCRIPTION_TIMEOUT_MS", cfg.SubscriptionTimeout)
	cfg.RenewalInterval = envDuration("ZONECTL_RENEWAL_INTERVAL_MS", cfg.RenewalInterval)
	cfg.RecoveryPace = envDuration("ZONECTL_RECOVERY_PACE_MS", cfg.RecoveryPace)
	cfg.CommandQueueCapacity = envInt("ZONECTL_COMMAND_QUEUE", cfg.CommandQueueCapacity)
	cfg.CallbackHost = envString("ZONECTL_CALLBACK_HOST", cfg.CallbackHost)
	cfg.CallbackPort = envInt("ZONECTL_CALLBACK_PORT", cfg.CallbackPort)

	path := envString("ZONECTL_CONFIG", "./zonectl.yaml")
	if data, err := os.ReadFile(path); err == nil {
		var override fileOverride
		if err := yaml.Unmarshal(data, &override); err != nil {
			return Config{}, err
		}
		if override.SeedRoomName != "" {
			cfg.SeedRoomName = override.SeedRoomName
		}
		if override.CallbackHost != "" {
			cfg.CallbackHost = override.CallbackHost
		}
		if override.CallbackPort != 0 {
			cfg.CallbackPort = override.CallbackPort
		}
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
