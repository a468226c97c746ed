package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "name: ${CASEDESK_TEST_NAME}\nlevel: 3\n")
	t.Setenv("CASEDESK_TEST_NAME", "from-env")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "from-env" || cfg.Level != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "level: 1\n")

	var cfg testConfig
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoad_EnvFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "name: ${CASEDESK_TEST_UNSET:-fallback}\nlevel: 2\n")
	t.Setenv("CASEDESK_TEST_UNSET", "")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "fallback" {
		t.Errorf("name = %q, want fallback", cfg.Name)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "name: x\nlevle: 2\n")

	var cfg testConfig
	if err := Load(path, &cfg); err == nil || !strings.Contains(err.Error(), "levle") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	in := testConfig{Name: "printed", Level: 4}
	data, err := Marshal(&in)
	if err != nil {
		t.Fatal(err)
	}
	var out testConfig
	if err := Decode(strings.NewReader(string(data)), &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "name: first\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *testConfig, 4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() *testConfig { return &testConfig{} }, func(c *testConfig) { changes <- c }, logger)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "level: 1\n")
	time.Sleep(400 * time.Millisecond)
	writeFile(t, path, "name: second\nlevel: 2\n")

	select {
	case c := <-changes:
		if c.Name != "second" || c.Level != 2 {
			t.Errorf("reloaded = %+v", c)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
