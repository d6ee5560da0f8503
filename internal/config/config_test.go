package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.TopicPolicy != TopicRandom {
		t.Errorf("Expected random topic policy, got %s", cfg.TopicPolicy)
	}
	if !cfg.AllowDuplicateTask {
		t.Error("Expected duplicate tasks allowed by default")
	}
	if cfg.InactivityTimeout != 30*time.Minute {
		t.Errorf("Expected 30m inactivity timeout, got %s", cfg.InactivityTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("TOPIC_POLICY", "rotation")
	t.Setenv("INACTIVITY_TIMEOUT", "5m")
	t.Setenv("PAIRING_ALLOW_DUPLICATE_TASK", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Port)
	}
	if cfg.TopicPolicy != TopicRotation {
		t.Errorf("Expected rotation policy, got %s", cfg.TopicPolicy)
	}
	if cfg.InactivityTimeout != 5*time.Minute {
		t.Errorf("Expected 5m timeout, got %s", cfg.InactivityTimeout)
	}
	if cfg.AllowDuplicateTask {
		t.Error("Expected duplicate tasks disabled")
	}
}

func TestDurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("INACTIVITY_TIMEOUT", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InactivityTimeout != 90*time.Second {
		t.Errorf("Expected 90s, got %s", cfg.InactivityTimeout)
	}
}

func TestValidateRejectsBadPolicy(t *testing.T) {
	t.Setenv("TOPIC_POLICY", "alphabetical")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown topic policy")
	}
}
