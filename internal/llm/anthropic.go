// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package llm

import (
	"context"
	"encoding/json"
	"log/slog"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	senterr "github.com/ojasavaparas/Sentinel/pkg/errors"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicConfig holds Anthropic client configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, useful for testing against a mock server
	// MaxTokens is the default per-call output cap used when a request
	// does not set its own. Zero falls back to 4096.
	MaxTokens int
}

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropicsdk.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient creates an Anthropic-backed gateway client.
// Returns an error if the API key is missing.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, senterr.New(senterr.CodeConfigValidateInvalidValue, "anthropic: missing api_key in config")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicClient{
		client:    anthropicsdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Chat sends one non-streaming Messages API call.
func (c *AnthropicClient) Chat(ctx context.Context, req Request) (*Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, senterr.Wrapf(err, senterr.CodeLLMUpstreamFailure, "anthropic: messages call for model %s", c.model)
	}

	out := &Response{
		Model:      c.model,
		StopReason: string(resp.StopReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.Text
		case "tool_use":
			input := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					return nil, senterr.Wrapf(err, senterr.CodeLLMResponseInvalid, "anthropic: decoding tool input for %s", block.Name)
				}
			}
			out.ToolCalls = append(out.ToolCalls, ToolUse{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}

	slog.Debug("anthropic chat complete",
		"model", c.model,
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
		"tool_calls", len(out.ToolCalls),
	)

	return out, nil
}

func (c *AnthropicClient) buildParams(req Request) (anthropicsdk.MessageNewParams, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	msgs, err := convertAnthropicMessages(req.Messages)
	if err != nil {
		return anthropicsdk.MessageNewParams{}, err
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.model),
		Messages:  msgs,
		MaxTokens: maxTokens,
	}

	if req.System != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: req.System}}
	}

	if len(req.Tools) > 0 {
		params.Tools = convertAnthropicTools(req.Tools)
	}

	return params, nil
}

func convertAnthropicMessages(msgs []Message) ([]anthropicsdk.MessageParam, error) {
	var result []anthropicsdk.MessageParam

	for _, msg := range msgs {
		switch msg.Role {
		case RoleUser:
			var blocks []anthropicsdk.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropicsdk.NewTextBlock(msg.Content))
			}
			for _, tr := range msg.ToolResults {
				blocks = append(blocks, anthropicsdk.NewToolResultBlock(tr.ToolUseID, tr.Content, tr.IsError))
			}
			result = append(result, anthropicsdk.NewUserMessage(blocks...))

		case RoleAssistant:
			var blocks []anthropicsdk.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropicsdk.NewTextBlock(msg.Content))
			}
			for _, tu := range msg.ToolUses {
				blocks = append(blocks, anthropicsdk.ContentBlockParamUnion{
					OfToolUse: &anthropicsdk.ToolUseBlockParam{
						ID:    tu.ID,
						Name:  tu.Name,
						Input: tu.Input,
					},
				})
			}
			result = append(result, anthropicsdk.NewAssistantMessage(blocks...))

		default:
			return nil, senterr.Errorf(senterr.CodeLLMRequestInvalid, "anthropic: unsupported message role %q", msg.Role)
		}
	}

	return result, nil
}

func convertAnthropicTools(tools []ToolSchema) []anthropicsdk.ToolUnionParam {
	result := make([]anthropicsdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropicsdk.ToolInputSchemaParam{}
		if props, ok := t.InputSchema["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := t.InputSchema["required"].([]any); ok {
			strs := make([]string, 0, len(req))
			for _, v := range req {
				if s, ok := v.(string); ok {
					strs = append(strs, s)
				}
			}
			schema.Required = strs
		}

		result = append(result, anthropicsdk.ToolUnionParam{
			OfTool: &anthropicsdk.ToolParam{
				Name:        t.Name,
				Description: anthropicsdk.Opt(t.Description),
				InputSchema: schema,
			},
		})
	}
	return result
}
