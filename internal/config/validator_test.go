package config

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestWriteValidatorConfigRoundTrip(t *testing.T) {
	cfg := &ValidatorConfig{
		AssetsFolder: "/fixtures/assets",
		ResetLedger:  true,
		Accounts: []Account{
			{Label: "token metadata", AccountID: "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s", Executable: true},
		},
	}

	path, tmp, err := WriteValidatorConfig(cfg)
	if err != nil {
		t.Fatalf("WriteValidatorConfig returned error: %v", err)
	}
	defer tmp.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read serialized config: %v", err)
	}

	var got ValidatorConfig
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal serialized config: %v", err)
	}
	if got.AssetsFolder != cfg.AssetsFolder {
		t.Fatalf("assets folder mismatch: %q", got.AssetsFolder)
	}
	if !got.ResetLedger {
		t.Fatalf("reset ledger flag lost")
	}
	if len(got.Accounts) != 1 || got.Accounts[0].AccountID != cfg.Accounts[0].AccountID {
		t.Fatalf("accounts lost in round trip: %+v", got.Accounts)
	}
	if !strings.HasSuffix(path, ".yaml") {
		t.Fatalf("expected yaml config path, got %q", path)
	}
}

func TestTempConfigRelease(t *testing.T) {
	path, tmp, err := WriteValidatorConfig(&ValidatorConfig{})
	if err != nil {
		t.Fatalf("WriteValidatorConfig returned error: %v", err)
	}

	tmp.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected backing file to be removed, stat err=%v", err)
	}

	// Releasing again, or releasing nil, must not panic.
	tmp.Release()
	var nilTmp *TempConfig
	nilTmp.Release()
}
