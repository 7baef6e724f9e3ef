package configs

import "testing"

// TestLoadConfigDefaults verifies every variable falls back to a sane default.
func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development default, got %q", cfg.Environment)
	}
	if cfg.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("expected no default origins, got %v", cfg.AllowedOrigins)
	}
}

// TestLoadConfigInvalidPort verifies a non-numeric port is rejected.
func TestLoadConfigInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

// TestLoadConfigPortRange verifies privileged and out-of-range ports are
// rejected.
func TestLoadConfigPortRange(t *testing.T) {
	for _, port := range []string{"80", "70000"} {
		t.Setenv("PORT", port)
		if _, err := LoadConfig(); err == nil {
			t.Errorf("expected error for PORT=%s", port)
		}
	}
}

// TestLoadConfigOrigins verifies the CSV origin list is split and trimmed.
func TestLoadConfigOrigins(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example ,, ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %v", len(want), cfg.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.AllowedOrigins[i] != origin {
			t.Errorf("origin %d: expected %q, got %q", i, origin, cfg.AllowedOrigins[i])
		}
	}
}
