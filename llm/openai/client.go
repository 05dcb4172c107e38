// Package openai implements llm.Provider on top of OpenAI's Chat Completions
// API via github.com/sashabaranov/go-openai, the library actually imported by
// goadesign-goa-ai's features/model/openai/client.go (the teacher's own
// go.mod instead lists github.com/openai/openai-go, which no file in that
// tree imports — see DESIGN.md's dependency ledger for the discrepancy).
// Client/New/NewFromAPIKey and the ChatClient test-substitution seam mirror
// that file; encodeMessages/encodeTools are adapted from its
// translateResponse/encodeTools to this module's flat agentmodel.Message
// shape. Unlike the teacher's adapter, which declines streaming
// (model.ErrStreamingUnsupported), StreamCompletion here drives
// CreateChatCompletionStream directly, since every llm.Provider must stream.
package openai

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/trussdev/agentcore/agentcoreerr"
	"github.com/trussdev/agentcore/agentmodel"
	"github.com/trussdev/agentcore/llm"
)

// ChatClient captures the subset of the go-openai client used here, so tests
// can substitute a fake without a live API key.
type ChatClient interface {
	CreateChatCompletionStream(ctx context.Context, request openai.ChatCompletionRequest) (Stream, error)
}

// Stream is the subset of *openai.ChatCompletionStream this package drives,
// narrowed so chunkStreamer can be tested against a fake.
type Stream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// realChatClient adapts *openai.Client's concrete
// *openai.ChatCompletionStream return type to the Stream interface above.
type realChatClient struct {
	client *openai.Client
}

func (c *realChatClient) CreateChatCompletionStream(ctx context.Context, request openai.ChatCompletionRequest) (Stream, error) {
	return c.client.CreateChatCompletionStream(ctx, request)
}

// Client implements llm.Provider against OpenAI's Chat Completions API.
type Client struct {
	chat  ChatClient
	model string
}

// New wraps chat (typically a *realChatClient built by NewFromAPIKey, or a
// fake in tests) as an llm.Provider. defaultModel is used when an
// AgentConfig's LLMConfig.ModelName is empty.
func New(chat ChatClient, defaultModel string) *Client {
	return &Client{chat: chat, model: defaultModel}
}

// NewFromAPIKey constructs a Client from an OpenAI API key, using go-openai's
// default HTTP client the same way the teacher's adapter does.
func NewFromAPIKey(apiKey, defaultModel string) *Client {
	return New(&realChatClient{client: openai.NewClient(apiKey)}, defaultModel)
}

var _ llm.Provider = (*Client)(nil)

// StreamCompletion issues a CreateChatCompletionStream request built from
// memory, cfg, and tools, and adapts the resulting delta stream into
// llm.Chunks.
func (c *Client) StreamCompletion(ctx context.Context, memory agentmodel.AgentMemory, cfg agentmodel.LLMConfig, tools []llm.ToolSpec) (llm.Stream, error) {
	request, err := c.buildRequest(memory, cfg, tools)
	if err != nil {
		return llm.Stream{}, err
	}
	stream, err := c.chat.CreateChatCompletionStream(ctx, *request)
	if err != nil {
		return llm.Stream{}, agentcoreerr.Wrap(agentcoreerr.KindProviderError, err, "openai chat.completions.stream")
	}
	return newChunkStreamer(ctx, stream), nil
}

func (c *Client) buildRequest(memory agentmodel.AgentMemory, cfg agentmodel.LLMConfig, tools []llm.ToolSpec) (*openai.ChatCompletionRequest, error) {
	if len(memory.Messages) == 0 {
		return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "openai: messages are required")
	}
	modelID := cfg.ModelName
	if modelID == "" {
		modelID = c.model
	}
	if modelID == "" {
		return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "openai: model_name is required")
	}

	messages, err := encodeMessages(memory.Messages)
	if err != nil {
		return nil, err
	}

	request := openai.ChatCompletionRequest{
		Model:       modelID,
		Messages:    messages,
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
		Stream:      true,
	}
	if cfg.MaxTokens != nil {
		request.MaxTokens = *cfg.MaxTokens
	}
	toolParams, err := encodeTools(tools)
	if err != nil {
		return nil, err
	}
	if len(toolParams) > 0 {
		request.Tools = toolParams
	}
	return &request, nil
}

// encodeMessages adapts the teacher's translateResponse-side message
// shape in reverse: agentmodel.Message to openai.ChatCompletionMessage,
// carrying ToolCalls on an assistant turn and ToolCallID on a tool turn,
// neither of which the teacher's Complete path needed to produce since it
// only ever translated responses, never requests with prior tool turns.
func encodeMessages(msgs []agentmodel.Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		content := ""
		if m.Content != nil {
			content = *m.Content
		}
		switch m.Role {
		case agentmodel.RoleSystem:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: content})
		case agentmodel.RoleUser:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content})
		case agentmodel.RoleAssistant:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}
			for _, tc := range m.ToolCalls {
				args, err := json.Marshal(tc.Arguments)
				if err != nil {
					return nil, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "openai: encode tool call %s arguments", tc.ID)
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:       tc.ID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: tc.Name, Arguments: string(args)},
				})
			}
			out = append(out, msg)
		case agentmodel.RoleTool:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleTool, Content: content, ToolCallID: m.ToolCallID})
		default:
			return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "openai: unsupported message role %q", m.Role)
		}
	}
	return out, nil
}

func encodeTools(specs []llm.ToolSpec) ([]openai.Tool, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]openai.Tool, 0, len(specs))
	for _, t := range specs {
		fn := &openai.FunctionDefinition{Name: t.Name}
		if strings.TrimSpace(t.Description) != "" {
			fn.Description = t.Description
		}
		if len(t.Schema) > 0 {
			fn.Parameters = json.RawMessage(t.Schema)
		}
		out = append(out, openai.Tool{Type: openai.ToolTypeFunction, Function: fn})
	}
	return out, nil
}
