// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package llm

import (
	"context"
	"encoding/json"
	"log/slog"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	senterr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

const defaultOpenAIModel = "gpt-4.1"

// OpenAIConfig holds OpenAI client configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, useful for testing against a mock server
	// MaxTokens is the default per-call output cap used when a request
	// does not set its own.
	MaxTokens int
}

// OpenAIClient implements Client using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client    openaisdk.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates an OpenAI-backed gateway client.
// Returns an error if the API key is missing.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, senterr.New(senterr.CodeConfigValidateInvalidValue, "openai: missing api_key in config")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIClient{
		client:    openaisdk.NewClient(opts...),
		model:     model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Chat sends one non-streaming chat completion call.
func (c *OpenAIClient) Chat(ctx context.Context, req Request) (*Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, senterr.Wrapf(err, senterr.CodeLLMUpstreamFailure, "openai: chat completion for model %s", c.model)
	}
	if len(resp.Choices) == 0 {
		return nil, senterr.New(senterr.CodeLLMResponseInvalid, "openai: response contained no choices")
	}

	choice := resp.Choices[0]
	out := &Response{
		Text:       choice.Message.Content,
		Model:      c.model,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		input := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return nil, senterr.Wrapf(err, senterr.CodeLLMResponseInvalid, "openai: decoding tool arguments for %s", tc.Function.Name)
			}
		}
		out.ToolCalls = append(out.ToolCalls, ToolUse{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}

	slog.Debug("openai chat complete",
		"model", c.model,
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
		"tool_calls", len(out.ToolCalls),
	)

	return out, nil
}

func (c *OpenAIClient) buildParams(req Request) (openaisdk.ChatCompletionNewParams, error) {
	msgs, err := convertOpenAIMessages(req.Messages, req.System)
	if err != nil {
		return openaisdk.ChatCompletionNewParams{}, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: msgs,
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(maxTokens))
	}

	if len(req.Tools) > 0 {
		params.Tools = convertOpenAITools(req.Tools)
	}

	return params, nil
}

func convertOpenAIMessages(msgs []Message, system string) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	var result []openaisdk.ChatCompletionMessageParamUnion

	if system != "" {
		result = append(result, openaisdk.SystemMessage(system))
	}

	for _, msg := range msgs {
		switch msg.Role {
		case RoleUser:
			if msg.Content != "" {
				result = append(result, openaisdk.UserMessage(msg.Content))
			}
			// Tool results travel as dedicated tool-role messages.
			for _, tr := range msg.ToolResults {
				result = append(result, openaisdk.ToolMessage(tr.Content, tr.ToolUseID))
			}

		case RoleAssistant:
			if len(msg.ToolUses) == 0 {
				result = append(result, openaisdk.AssistantMessage(msg.Content))
				continue
			}

			assistant := openaisdk.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = param.NewOpt(msg.Content)
			}
			for _, tu := range msg.ToolUses {
				args, err := json.Marshal(tu.Input)
				if err != nil {
					return nil, senterr.Wrapf(err, senterr.CodeLLMRequestInvalid, "openai: encoding tool arguments for %s", tu.Name)
				}
				assistant.ToolCalls = append(assistant.ToolCalls, openaisdk.ChatCompletionMessageToolCallParam{
					ID: tu.ID,
					Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
						Name:      tu.Name,
						Arguments: string(args),
					},
				})
			}
			result = append(result, openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		default:
			return nil, senterr.Errorf(senterr.CodeLLMRequestInvalid, "openai: unsupported message role %q", msg.Role)
		}
	}

	return result, nil
}

func convertOpenAITools(tools []ToolSchema) []openaisdk.ChatCompletionToolParam {
	result := make([]openaisdk.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		result = append(result, openaisdk.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: param.NewOpt(t.Description),
				Parameters:  shared.FunctionParameters(t.InputSchema),
			},
		})
	}
	return result
}
