// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sentinel Contributors

package llm

import (
	"context"
	"sync"
)

// ScriptedClient is a deterministic Client that replays pre-scripted
// responses in order. It backs tests and the offline demo mode.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []*Response
	index     int
	history   []Request
}

// NewScriptedClient creates a client that will return the given responses
// in sequence.
func NewScriptedClient(responses ...*Response) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// AddResponse appends another scripted response.
func (c *ScriptedClient) AddResponse(resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
}

// Chat records the request and returns the next scripted response. Once the
// script is exhausted it returns a fixed terminal response with no tool calls
// so callers always converge.
func (c *ScriptedClient) Chat(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, req)

	if c.index < len(c.responses) {
		resp := c.responses[c.index]
		c.index++
		return resp, nil
	}

	return &Response{
		Text:       "Scripted response exhausted.",
		Usage:      Usage{InputTokens: 10, OutputTokens: 10},
		Model:      "scripted",
		StopReason: "end_turn",
	}, nil
}

// CallCount reports how many chat calls have been made.
func (c *ScriptedClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// History returns a copy of all recorded requests.
func (c *ScriptedClient) History() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.history))
	copy(out, c.history)
	return out
}
