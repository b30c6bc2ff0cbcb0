package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Kalshi.ApiKey = "key-id"
	cfg.Kalshi.RsaPrivateKeyPath = "/etc/arbfinder/kalshi.pem"
	return cfg
}

func TestDefaultsValidateWithCredentials(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate passed without kalshi credentials")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Errorf("error does not mention api_key: %v", err)
	}
}

func TestValidateMinSpreadRange(t *testing.T) {
	for _, bad := range []float64{0.4, 10.5, -1} {
		cfg := validConfig()
		cfg.Scanner.MinSpread = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("min_spread %g accepted", bad)
		}
	}
	for _, good := range []float64{0.5, 1.0, 10} {
		cfg := validConfig()
		cfg.Scanner.MinSpread = good
		if err := cfg.Validate(); err != nil {
			t.Errorf("min_spread %g rejected: %v", good, err)
		}
	}
}

func TestValidateHistoryRetention(t *testing.T) {
	cfg := validConfig()
	cfg.Scanner.HistoryRetention = duration{-time.Hour}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "history_retention") {
		t.Errorf("negative retention accepted: %v", err)
	}

	// Zero disables pruning and is valid.
	cfg = validConfig()
	cfg.Scanner.HistoryRetention = duration{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero retention rejected: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "bogus"
	cfg.Scanner.MinSpread = 50
	cfg.Scanner.TieBreak = "random"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate passed")
	}
	for _, want := range []string{"mode", "min_spread", "tie_break"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("combined error missing %q: %v", want, err)
		}
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
mode = "scan"

[kalshi]
api_key = "from-file"
rsa_private_key_path = "/keys/kalshi.pem"

[scanner]
refresh_interval = "45s"
min_spread = 2.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "scan" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Scanner.RefreshInterval.Duration != 45*time.Second {
		t.Errorf("refresh_interval = %v", cfg.Scanner.RefreshInterval.Duration)
	}
	if cfg.Scanner.MinSpread != 2.5 {
		t.Errorf("min_spread = %g", cfg.Scanner.MinSpread)
	}
	// Untouched fields keep their defaults.
	if cfg.Scanner.MatchThreshold != 60.0 {
		t.Errorf("match_threshold = %g, want default", cfg.Scanner.MatchThreshold)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("server port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("mode = \"full\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ARBFINDER_KALSHI_API_KEY", "from-env")
	t.Setenv("ARBFINDER_SCANNER_MIN_SPREAD", "3.5")
	t.Setenv("ARBFINDER_SCANNER_REFRESH_INTERVAL", "2m")
	t.Setenv("ARBFINDER_SCANNER_HISTORY_RETENTION", "48h")
	t.Setenv("ARBFINDER_KAFKA_BROKERS", "b1:9092, b2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Kalshi.ApiKey != "from-env" {
		t.Errorf("api_key = %q", cfg.Kalshi.ApiKey)
	}
	if cfg.Scanner.MinSpread != 3.5 {
		t.Errorf("min_spread = %g", cfg.Scanner.MinSpread)
	}
	if cfg.Scanner.RefreshInterval.Duration != 2*time.Minute {
		t.Errorf("refresh_interval = %v", cfg.Scanner.RefreshInterval.Duration)
	}
	if cfg.Scanner.HistoryRetention.Duration != 48*time.Hour {
		t.Errorf("history_retention = %v", cfg.Scanner.HistoryRetention.Duration)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b2:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}
