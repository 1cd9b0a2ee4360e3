package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadINI(t *testing.T) {
	path := writeConfig(t, `SpotifyClientID = test_client
SpotifyClientSecret = test_secret
DeviceName = Living Room
HydrationIntervalSec = 120
APIRatePerSecond = 2.5
LogSource = true
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("SpotifyClientID") != "test_client" {
		t.Errorf("expected SpotifyClientID=test_client, got %s", conf.GetString("SpotifyClientID"))
	}
	if conf.GetString("DeviceName") != "Living Room" {
		t.Errorf("expected DeviceName to be parsed, got %s", conf.GetString("DeviceName"))
	}
	if conf.GetInt("HydrationIntervalSec") != 120 {
		t.Errorf("expected HydrationIntervalSec=120, got %d", conf.GetInt("HydrationIntervalSec"))
	}
	if conf.GetFloat64("APIRatePerSecond") != 2.5 {
		t.Errorf("expected APIRatePerSecond=2.5, got %f", conf.GetFloat64("APIRatePerSecond"))
	}
	if !conf.GetBool("LogSource") {
		t.Error("expected LogSource=true")
	}
}

func TestDefaults(t *testing.T) {
	conf, err := Load(writeConfig(t, `SpotifyClientID = x`))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("LogLevel") != "info" {
		t.Errorf("expected default LogLevel=info, got %s", conf.GetString("LogLevel"))
	}
	if conf.GetInt("HydrationIntervalSec") != 300 {
		t.Errorf("expected default HydrationIntervalSec=300, got %d", conf.GetInt("HydrationIntervalSec"))
	}
	if conf.GetInt("HydrationTimeoutSec") != 60 {
		t.Errorf("expected default HydrationTimeoutSec=60, got %d", conf.GetInt("HydrationTimeoutSec"))
	}
	if conf.GetInt("LibraryPageSize") != 50 {
		t.Errorf("expected default LibraryPageSize=50, got %d", conf.GetInt("LibraryPageSize"))
	}
	if conf.GetString("DeviceName") != "Spotless Player" {
		t.Errorf("expected default DeviceName, got %s", conf.GetString("DeviceName"))
	}
	if conf.GetInt("WorkerPoolSize") != 4 {
		t.Errorf("expected default WorkerPoolSize=4, got %d", conf.GetInt("WorkerPoolSize"))
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SPOTLESS_LOGLEVEL", "debug")

	conf, err := Load(writeConfig(t, `SpotifyClientID = x`))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("LogLevel") != "debug" {
		t.Errorf("expected env override LogLevel=debug, got %s", conf.GetString("LogLevel"))
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.ini")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
