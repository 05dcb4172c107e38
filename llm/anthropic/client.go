// Package anthropic implements llm.Provider on top of the Anthropic Claude
// Messages API, grounded on goadesign-goa-ai's features/model/anthropic
// (client.go's MessagesClient interface and request-building, stream.go's
// event accumulation), simplified to this module's flat agentmodel.Message
// shape: no Parts, no thinking blocks, one tool-result block per tool
// message.
package anthropic

import (
	"context"
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/llm"
)

// MessagesClient captures the subset of the Anthropic SDK used here, so
// tests can substitute a fake without a live API key.
type MessagesClient interface {
	NewStreaming(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion]
}

// Client implements llm.Provider against the Anthropic Messages API.
type Client struct {
	msg              MessagesClient
	defaultMaxTokens int64
}

// New wraps msg (typically &sdk.NewClient(...).Messages) as an llm.Provider.
func New(msg MessagesClient) *Client {
	return &Client{msg: msg, defaultMaxTokens: 4096}
}

// NewFromAPIKey constructs a Client from an Anthropic API key, reading
// additional defaults (base URL, timeouts) from the environment the same
// way sdk.NewClient does.
func NewFromAPIKey(apiKey string) *Client {
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&c.Messages)
}

var _ llm.Provider = (*Client)(nil)

// StreamCompletion issues a Messages.NewStreaming request built from memory,
// cfg, and tools, and adapts the resulting event stream into llm.Chunks.
func (c *Client) StreamCompletion(ctx context.Context, memory agentmodel.AgentMemory, cfg agentmodel.LLMConfig, tools []llm.ToolSpec) (llm.Stream, error) {
	params, err := c.buildParams(memory, cfg, tools)
	if err != nil {
		return llm.Stream{}, err
	}
	stream := c.msg.NewStreaming(ctx, *params)
	if err := stream.Err(); err != nil {
		return llm.Stream{}, agentcoreerr.Wrap(agentcoreerr.KindProviderError, err, "anthropic messages.new stream")
	}
	return newEventStreamer(ctx, stream), nil
}

func (c *Client) buildParams(memory agentmodel.AgentMemory, cfg agentmodel.LLMConfig, tools []llm.ToolSpec) (*sdk.MessageNewParams, error) {
	if len(memory.Messages) == 0 {
		return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "anthropic: messages are required")
	}
	if cfg.ModelName == "" {
		return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "anthropic: model_name is required")
	}

	conversation, system, err := encodeMessages(memory.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := c.defaultMaxTokens
	if cfg.MaxTokens != nil {
		maxTokens = int64(*cfg.MaxTokens)
	}

	params := sdk.MessageNewParams{
		MaxTokens: maxTokens,
		Messages:  conversation,
		Model:     sdk.Model(cfg.ModelName),
		Temperature: sdk.Float(cfg.Temperature),
		TopP:        sdk.Float(cfg.TopP),
	}
	if len(system) > 0 {
		params.System = system
	}
	if toolParams := encodeTools(tools); len(toolParams) > 0 {
		params.Tools = toolParams
	}
	return &params, nil
}

// encodeMessages splits memory into Anthropic's system-block list and
// user/assistant conversation turns. A tool-role message becomes a
// tool_result content block inside a synthetic user turn, matching the
// Messages API's requirement that tool results follow the assistant turn
// that requested them.
func encodeMessages(msgs []agentmodel.Message) ([]sdk.MessageParam, []sdk.TextBlockParam, error) {
	conversation := make([]sdk.MessageParam, 0, len(msgs))
	var system []sdk.TextBlockParam

	for _, m := range msgs {
		switch m.Role {
		case agentmodel.RoleSystem:
			if m.Content != nil && *m.Content != "" {
				system = append(system, sdk.TextBlockParam{Text: *m.Content})
			}
		case agentmodel.RoleUser:
			if m.Content == nil {
				continue
			}
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(*m.Content)))
		case agentmodel.RoleAssistant:
			blocks := make([]sdk.ContentBlockParamUnion, 0, 1+len(m.ToolCalls))
			if m.Content != nil && *m.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(*m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, tc.Arguments, tc.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			conversation = append(conversation, sdk.NewAssistantMessage(blocks...))
		case agentmodel.RoleTool:
			content := ""
			if m.Content != nil {
				content = *m.Content
			}
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewToolResultBlock(m.ToolCallID, content, false)))
		default:
			return nil, nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "anthropic: unsupported message role %q", m.Role)
		}
	}
	if len(conversation) == 0 {
		return nil, nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "anthropic: at least one user/assistant message is required")
	}
	return conversation, system, nil
}

func encodeTools(tools []llm.ToolSpec) []sdk.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]sdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := sdk.ToolInputSchemaParam{}
		if len(t.Schema) > 0 {
			var m map[string]any
			if err := json.Unmarshal(t.Schema, &m); err == nil {
				schema.ExtraFields = m
			}
		}
		u := sdk.ToolUnionParamOfTool(schema, t.Name)
		if u.OfTool != nil && t.Description != "" {
			u.OfTool.Description = sdk.String(t.Description)
		}
		out = append(out, u)
	}
	return out
}
