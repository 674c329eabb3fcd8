// Package config holds the harness configuration (how to reach and launch
// the validator) and the validator's own startup configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Well-known ports shared between the harness and the validator. Both service
// ports must be reachable before a start is considered successful.
const (
	DefaultValidatorPort = 8899
	DefaultRPCPort       = 8900
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Ports names the two TCP ports whose open/closed state proxies validator
// readiness and shutdown.
type Ports struct {
	Validator int `yaml:"validator"`
	RPC       int `yaml:"rpc"`
}

// Config mirrors the amman.yaml harness document.
type Config struct {
	// Launcher selects how the validator is spawned: "process" or "docker".
	Launcher string `yaml:"launcher"`
	// Image is the container image used by the docker launcher.
	Image string `yaml:"image"`
	// Fixtures is the directory the validator is launched from.
	Fixtures string `yaml:"fixtures"`
	// Assets overrides the assets folder injected into validator configs.
	// Defaults to <fixtures>/assets.
	Assets string `yaml:"assets"`
	// RelayURL overrides the relay base URL. Empty selects the local relay
	// on its default port.
	RelayURL string `yaml:"relayURL"`
	Ports    Ports  `yaml:"ports"`
	// WaitTimeout bounds readiness and shutdown waits. Zero waits forever.
	WaitTimeout Duration `yaml:"waitTimeout"`
}

// ApplyDefaults fills unset fields with their conventional values.
func (c *Config) ApplyDefaults() {
	if c.Launcher == "" {
		c.Launcher = "process"
	}
	if c.Fixtures == "" {
		c.Fixtures = "./tests/fixtures"
	}
	if c.Assets == "" {
		c.Assets = filepath.Join(c.Fixtures, "assets")
	}
	if c.Ports.Validator == 0 {
		c.Ports.Validator = DefaultValidatorPort
	}
	if c.Ports.RPC == 0 {
		c.Ports.RPC = DefaultRPCPort
	}
}

// Validate reports configuration the harness cannot work with.
func (c *Config) Validate() error {
	switch c.Launcher {
	case "process", "docker":
	default:
		return fmt.Errorf("unknown launcher %q", c.Launcher)
	}
	if c.Launcher == "docker" && c.Image == "" {
		return fmt.Errorf("docker launcher requires an image")
	}
	if c.Ports.Validator == c.Ports.RPC {
		return fmt.Errorf("validator and rpc ports must differ (both %d)", c.Ports.Validator)
	}
	return nil
}

// Load reads a harness config from the provided path.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var doc Config
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	doc.ApplyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &doc, nil
}

// Default returns a config with every field at its conventional value.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
