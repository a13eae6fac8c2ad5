package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Hub.HistoryCapacity != 1000 {
		t.Fatalf("expected default history capacity 1000, got %d", c.Hub.HistoryCapacity)
	}
	if c.Hub.Namespace != "markethub" {
		t.Fatalf("expected default namespace, got %q", c.Hub.Namespace)
	}
	if c.Redis.Port != 6379 || c.Redis.DialTimeout != 5*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", c.Redis)
	}
	if c.Hub.SnapshotTopic != "market_updates" || c.Hub.SignalTopic != "signals" {
		t.Fatalf("unexpected topic defaults: %+v", c.Hub)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
redis:
  host: redis.internal
  port: 6380
hub:
  namespace: stock
  history_capacity: 500
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Redis.Host != "redis.internal" || c.Redis.Port != 6380 {
		t.Fatalf("unexpected redis config: %+v", c.Redis)
	}
	if c.Hub.Namespace != "stock" || c.Hub.HistoryCapacity != 500 {
		t.Fatalf("unexpected hub config: %+v", c.Hub)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []string{
		"",                                     // missing environment
		"environment: test\nhub:\n  history_capacity: -5\n",
		"environment: test\nhub:\n  namespace: \"a:b\"\n",
		"environment: test\nforwarder:\n  enabled: true\n",
	}
	for i, body := range cases {
		path := writeConfig(t, body)
		if _, err := Load(path); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	t.Setenv("REDIS_HOST", "override.local")
	t.Setenv("REDIS_PORT", "7000")
	t.Setenv("HUB_NAMESPACE", "alt")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Redis.Host != "override.local" || c.Redis.Port != 7000 {
		t.Fatalf("env override not applied: %+v", c.Redis)
	}
	if c.Hub.Namespace != "alt" {
		t.Fatalf("env override not applied: %+v", c.Hub)
	}
}
