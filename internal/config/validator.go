package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Account pins an address the validator should preload, typically cloned
// from a public cluster into the local ledger.
type Account struct {
	Label      string `yaml:"label,omitempty"`
	AccountID  string `yaml:"accountId"`
	Cluster    string `yaml:"cluster,omitempty"`
	Executable bool   `yaml:"executable,omitempty"`
}

// ValidatorConfig is the startup configuration handed to the validator via a
// config file argument. The zero value asks for an unconfigured start.
type ValidatorConfig struct {
	// AssetsFolder is where the validator loads programs and account dumps
	// from. When empty the supervisor injects its own assets directory
	// before serialization.
	AssetsFolder    string    `yaml:"assetsFolder,omitempty"`
	LedgerDir       string    `yaml:"ledgerDir,omitempty"`
	ResetLedger     bool      `yaml:"resetLedger,omitempty"`
	VerifyFees      bool      `yaml:"verifyFees,omitempty"`
	LimitLedgerSize int       `yaml:"limitLedgerSize,omitempty"`
	Accounts        []Account `yaml:"accounts,omitempty"`
}

// LoadValidatorConfig reads a validator config from a YAML file.
func LoadValidatorConfig(path string) (*ValidatorConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open validator config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var cfg ValidatorConfig
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	return &cfg, nil
}

// TempConfig is the transient backing storage of a serialized validator
// config. The spawned validator reads the file at startup, so callers must
// keep the TempConfig alive until their spawn call has returned and only
// then Release it.
type TempConfig struct {
	// Path is the location of the serialized config.
	Path string
}

// Release removes the backing file. Safe to call on a nil receiver.
func (t *TempConfig) Release() {
	if t == nil || t.Path == "" {
		return
	}
	_ = os.Remove(t.Path)
	t.Path = ""
}

// WriteValidatorConfig serializes the config to a temporary file and returns
// its path together with the handle that owns the file's lifetime.
func WriteValidatorConfig(cfg *ValidatorConfig) (string, *TempConfig, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("marshal validator config: %w", err)
	}

	f, err := os.CreateTemp("", "amman-config-*.yaml")
	if err != nil {
		return "", nil, fmt.Errorf("create validator config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write validator config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("close validator config: %w", err)
	}

	return f.Name(), &TempConfig{Path: f.Name()}, nil
}
