package agentmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trussdev/agentcore/agentmodel"
)

func TestNewLLMConfigAppliesDefaults(t *testing.T) {
	cfg, err := agentmodel.NewLLMConfig("claude-sonnet-4-5", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0.7, cfg.Temperature)
	require.Equal(t, 1.0, cfg.TopP)
}

func TestNewLLMConfigRejectsEmptyModelName(t *testing.T) {
	_, err := agentmodel.NewLLMConfig("", nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestNewLLMConfigRejectsOutOfRangeTemperature(t *testing.T) {
	temp := 2.5
	_, err := agentmodel.NewLLMConfig("claude-sonnet-4-5", &temp, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestNewLLMConfigRejectsNonPositiveMaxTokens(t *testing.T) {
	zero := 0
	_, err := agentmodel.NewLLMConfig("claude-sonnet-4-5", nil, &zero, nil, nil, nil)
	require.Error(t, err)
}

func TestNewLLMConfigRejectsNegativePenalties(t *testing.T) {
	neg := -0.1
	_, err := agentmodel.NewLLMConfig("claude-sonnet-4-5", nil, nil, nil, &neg, nil)
	require.Error(t, err)
}

func TestNewAgentConfigRequiresName(t *testing.T) {
	llmCfg, err := agentmodel.NewLLMConfig("claude-sonnet-4-5", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	_, err = agentmodel.NewAgentConfig("id1", "", "be helpful", llmCfg, nil)
	require.Error(t, err)
}

func TestNewAgentConfigPropagatesLLMConfigValidation(t *testing.T) {
	_, err := agentmodel.NewAgentConfig("id1", "support-bot", "be helpful", agentmodel.LLMConfig{}, nil)
	require.Error(t, err)
}

func TestNewAgentConfigSuccess(t *testing.T) {
	llmCfg, err := agentmodel.NewLLMConfig("claude-sonnet-4-5", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	cfg, err := agentmodel.NewAgentConfig("id1", "support-bot", "be helpful", llmCfg, []string{"web_search"})
	require.NoError(t, err)
	require.Equal(t, "support-bot", cfg.Name)
	require.Equal(t, []string{"web_search"}, cfg.Tools)
}
