package agentmodel

import (
	"strings"

	"github.com/trussdev/agentcore/agentcoreerr"
)

// LLMConfig configures a single model invocation. It is immutable once
// constructed via NewLLMConfig.
type LLMConfig struct {
	ModelName        string   `json:"model_name"`
	Temperature      float64  `json:"temperature"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             float64  `json:"top_p"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	PresencePenalty  float64  `json:"presence_penalty"`
}

// defaultTemperature, defaultTopP mirror spec.md §3's documented defaults.
const (
	defaultTemperature = 0.7
	defaultTopP        = 1.0
)

// NewLLMConfig applies defaults for zero-valued optional fields and
// validates bounds, returning a KindInvalidInput error on violation.
func NewLLMConfig(modelName string, temperature *float64, maxTokens *int, topP *float64, frequencyPenalty, presencePenalty *float64) (LLMConfig, error) {
	cfg := LLMConfig{
		ModelName:   modelName,
		Temperature: defaultTemperature,
		TopP:        defaultTopP,
		MaxTokens:   maxTokens,
	}
	if temperature != nil {
		cfg.Temperature = *temperature
	}
	if topP != nil {
		cfg.TopP = *topP
	}
	if frequencyPenalty != nil {
		cfg.FrequencyPenalty = *frequencyPenalty
	}
	if presencePenalty != nil {
		cfg.PresencePenalty = *presencePenalty
	}
	if err := cfg.Validate(); err != nil {
		return LLMConfig{}, err
	}
	return cfg, nil
}

// Validate checks the bounds documented in spec.md §3. Called both at
// construction time and when loading a persisted AgentConfig so a config
// that predates a stricter validator still fails fast.
func (c LLMConfig) Validate() error {
	if strings.TrimSpace(c.ModelName) == "" {
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "model_name is required")
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "temperature %v out of range [0.0, 2.0]", c.Temperature)
	}
	if c.TopP < 0.0 || c.TopP > 1.0 {
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "top_p %v out of range [0, 1]", c.TopP)
	}
	if c.FrequencyPenalty < 0 {
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "frequency_penalty must be >= 0")
	}
	if c.PresencePenalty < 0 {
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "presence_penalty must be >= 0")
	}
	if c.MaxTokens != nil && *c.MaxTokens <= 0 {
		return agentcoreerr.New(agentcoreerr.KindInvalidInput, "max_tokens must be positive when set")
	}
	return nil
}

// AgentConfig describes one configured agent: its prompt, model
// configuration, and the tool names it is permitted to call.
type AgentConfig struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SystemPrompt string    `json:"system_prompt"`
	LLMConfig    LLMConfig `json:"llm_config"`
	Tools        []string  `json:"tools,omitempty"`
}

// NewAgentConfig validates and constructs an AgentConfig.
func NewAgentConfig(id, name, systemPrompt string, llmConfig LLMConfig, tools []string) (AgentConfig, error) {
	if strings.TrimSpace(name) == "" {
		return AgentConfig{}, agentcoreerr.New(agentcoreerr.KindInvalidInput, "agent name is required")
	}
	if err := llmConfig.Validate(); err != nil {
		return AgentConfig{}, err
	}
	return AgentConfig{ID: id, Name: name, SystemPrompt: systemPrompt, LLMConfig: llmConfig, Tools: tools}, nil
}
