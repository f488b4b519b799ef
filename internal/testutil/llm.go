package testutil

import (
	"context"
	"sync"

	"github.com/trackline/helpdesk/internal/llm"
)

// ScriptedProvider is an llm.Provider that replays canned replies in order,
// repeating the last one when the script runs out. It records every call
// for assertions.
type ScriptedProvider struct {
	ProviderName string
	Replies      []string
	Err          error

	mu    sync.Mutex
	calls [][]llm.Message
}

// Name implements llm.Provider.
func (p *ScriptedProvider) Name() string {
	if p.ProviderName == "" {
		return "scripted"
	}
	return p.ProviderName
}

// Generate implements llm.Provider.
func (p *ScriptedProvider) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := make([]llm.Message, len(messages))
	copy(msgs, messages)
	p.calls = append(p.calls, msgs)

	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Replies) == 0 {
		return "scripted reply", nil
	}
	idx := len(p.calls) - 1
	if idx >= len(p.Replies) {
		idx = len(p.Replies) - 1
	}
	return p.Replies[idx], nil
}

// Calls returns a copy of the recorded message sequences.
func (p *ScriptedProvider) Calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]llm.Message, len(p.calls))
	copy(out, p.calls)
	return out
}
