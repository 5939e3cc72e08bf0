package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROMOTION_MODE", "")
	t.Setenv("REVIEW_SESSION_TTL", "")
	t.Setenv("SMTP_PORT", "")

	cfg := Load()

	if cfg.PromotionMode != PromotionStepwise {
		t.Errorf("PromotionMode = %q, want %q", cfg.PromotionMode, PromotionStepwise)
	}
	if cfg.ReviewSessionTTL != 2*time.Hour {
		t.Errorf("ReviewSessionTTL = %v, want 2h", cfg.ReviewSessionTTL)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROMOTION_MODE", PromotionAtomic)
	t.Setenv("REVIEW_SESSION_TTL", "15m")
	t.Setenv("SMTP_PORT", "465")

	cfg := Load()

	if !cfg.IsAtomicPromotion() {
		t.Error("IsAtomicPromotion() = false, want true")
	}
	if cfg.ReviewSessionTTL != 15*time.Minute {
		t.Errorf("ReviewSessionTTL = %v, want 15m", cfg.ReviewSessionTTL)
	}
	if cfg.SMTPPort != 465 {
		t.Errorf("SMTPPort = %d, want 465", cfg.SMTPPort)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REVIEW_SESSION_TTL", "soon")
	t.Setenv("SMTP_PORT", "abc")

	cfg := Load()

	if cfg.ReviewSessionTTL != 2*time.Hour {
		t.Errorf("ReviewSessionTTL = %v, want fallback 2h", cfg.ReviewSessionTTL)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want fallback 587", cfg.SMTPPort)
	}
}

func TestIsEmailEnabled(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected bool
	}{
		{"fully configured", Config{SMTPEnabled: true, SMTPHost: "smtp.example.com", SMTPFrom: "a@example.com"}, true},
		{"switched off", Config{SMTPHost: "smtp.example.com", SMTPFrom: "a@example.com"}, false},
		{"missing host", Config{SMTPEnabled: true, SMTPFrom: "a@example.com"}, false},
		{"missing from", Config{SMTPEnabled: true, SMTPHost: "smtp.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEmailEnabled(); got != tt.expected {
				t.Errorf("IsEmailEnabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDev(t *testing.T) {
	for env, want := range map[string]bool{"development": true, "dev": true, "production": false} {
		cfg := &Config{Env: env}
		if got := cfg.IsDev(); got != want {
			t.Errorf("IsDev() for %q = %v, want %v", env, got, want)
		}
	}
}

func TestLoadYAMLConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "suggested_categories:\n  - Tech\n  - ai\n  - tech\n  - \" \"\n  - Finance\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadYAMLConfigFile(path)
	if err != nil {
		t.Fatalf("loadYAMLConfigFile() error = %v", err)
	}

	want := []string{"tech", "ai", "finance"}
	if !reflect.DeepEqual(cfg.Suggestions(), want) {
		t.Errorf("Suggestions() = %v, want %v", cfg.Suggestions(), want)
	}
}

func TestLoadYAMLConfigFile_Missing(t *testing.T) {
	cfg, err := loadYAMLConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadYAMLConfigFile() error = %v", err)
	}
	if cfg != nil {
		t.Errorf("loadYAMLConfigFile() = %v, want nil", cfg)
	}
	if cfg.Suggestions() != nil {
		t.Error("Suggestions() on nil config should be nil")
	}
}

func TestLoadYAMLConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("suggested_categories: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadYAMLConfigFile(path); err == nil {
		t.Error("loadYAMLConfigFile() error = nil, want parse error")
	}
}
