package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ProviderSettings configures a single backend. API keys are referenced by
// environment variable name so the settings file never holds secrets.
type ProviderSettings struct {
	Enabled   bool   `json:"enabled"`
	Model     string `json:"model"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
}

// APIKey resolves the configured key from the environment.
func (p ProviderSettings) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// BehaviorSettings tunes AI participant timing.
type BehaviorSettings struct {
	IdleTimeoutSeconds       int `json:"idle_timeout_seconds"`
	IdleCheckIntervalSeconds int `json:"idle_check_interval_seconds"`
	ResponseDelayMinMS       int `json:"response_delay_min_ms"`
	ResponseDelayMaxMS       int `json:"response_delay_max_ms"`
}

// ParticipantSettings bounds AI substitution.
type ParticipantSettings struct {
	ForceAIOnOddUsers bool `json:"force_ai_on_odd_users"`
	MaxAIParticipants int  `json:"max_ai_participants"`
}

// PairingSettings controls the post-reassignment delay.
type PairingSettings struct {
	DelayEnabled         bool `json:"delay_enabled"`
	ReassignDelaySeconds int  `json:"reassign_delay_seconds"`
}

// Settings is the full llm_config.json surface.
type Settings struct {
	Enabled         bool                        `json:"enabled"`
	DefaultProvider string                      `json:"default_provider"`
	Providers       map[string]ProviderSettings `json:"providers"`
	Behavior        BehaviorSettings            `json:"behavior"`
	AIParticipants  ParticipantSettings         `json:"ai_participants"`
	Pairing         PairingSettings             `json:"pairing"`
}

// IdleTimeout returns the idle threshold as a duration.
func (s *Settings) IdleTimeout() time.Duration {
	return time.Duration(s.Behavior.IdleTimeoutSeconds) * time.Second
}

// IdleCheckInterval returns the recurring idle-check cadence.
func (s *Settings) IdleCheckInterval() time.Duration {
	return time.Duration(s.Behavior.IdleCheckIntervalSeconds) * time.Second
}

// PacingMin returns the lower bound of the response pacing delay.
func (s *Settings) PacingMin() time.Duration {
	return time.Duration(s.Behavior.ResponseDelayMinMS) * time.Millisecond
}

// PacingMax returns the upper bound of the response pacing delay.
func (s *Settings) PacingMax() time.Duration {
	return time.Duration(s.Behavior.ResponseDelayMaxMS) * time.Millisecond
}

// ReassignDelay returns the configured reassignment delay.
func (s *Settings) ReassignDelay() time.Duration {
	return time.Duration(s.Pairing.ReassignDelaySeconds) * time.Second
}

// LoadSettings reads llm_config.json. A missing file yields defaults so the
// server runs with AI features on whatever credentials the environment has.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read llm config: %w", err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse llm config: %w", err)
	}
	return s, nil
}

// DefaultSettings mirrors the shipped llm_config.json defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Enabled:         true,
		DefaultProvider: "anthropic",
		Providers: map[string]ProviderSettings{
			"anthropic": {Enabled: true, Model: "claude-sonnet-4-20250514", APIKeyEnv: "ANTHROPIC_API_KEY"},
			"openai":    {Enabled: true, Model: "gpt-4o", APIKeyEnv: "OPENAI_API_KEY"},
			"grok":      {Enabled: false, Model: "grok-2", APIKeyEnv: "XAI_API_KEY", BaseURL: "https://api.x.ai/v1"},
			"ollama":    {Enabled: false, Model: "llama3.2", BaseURL: "http://localhost:11434"},
		},
		Behavior: BehaviorSettings{
			IdleTimeoutSeconds:       120,
			IdleCheckIntervalSeconds: 30,
			ResponseDelayMinMS:       500,
			ResponseDelayMaxMS:       3000,
		},
		AIParticipants: ParticipantSettings{
			ForceAIOnOddUsers: true,
			MaxAIParticipants: 5,
		},
		Pairing: PairingSettings{
			DelayEnabled:         true,
			ReassignDelaySeconds: 10,
		},
	}
}
