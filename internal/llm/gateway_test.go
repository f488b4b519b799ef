package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/trackline/helpdesk/internal/log"
)

// stubProvider records the messages it was invoked with.
type stubProvider struct {
	name     string
	reply    string
	err      error
	invoked  bool
	messages []Message
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	s.invoked = true
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestGateway(t *testing.T, defaultName string, providers ...Provider) *Gateway {
	t.Helper()
	gw, err := NewGateway(defaultName, log.NewNop(), providers...)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	return gw
}

func TestGateway_ResolvesNamedProvider(t *testing.T) {
	primary := &stubProvider{name: "openai", reply: "from openai"}
	secondary := &stubProvider{name: "anthropic", reply: "from anthropic"}
	gw := newTestGateway(t, "openai", primary, secondary)

	got, err := gw.Generate(context.Background(), "anthropic", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "from anthropic" {
		t.Errorf("answer = %q, want routed to anthropic", got)
	}
	if primary.invoked {
		t.Error("default provider invoked despite explicit selection")
	}
}

func TestGateway_RejectsUnregisteredDefault(t *testing.T) {
	primary := &stubProvider{name: "openai", reply: "ok"}

	// A default that names no provider would leave every fallback resolving
	// to nil, so construction must fail instead.
	gw, err := NewGateway("gemini", log.NewNop(), primary)
	if err == nil {
		t.Fatal("NewGateway accepted a default with no registered provider")
	}
	if gw != nil {
		t.Errorf("gateway = %v, want nil on construction error", gw)
	}
}

func TestGateway_UnknownProviderFallsBackToDefault(t *testing.T) {
	primary := &stubProvider{name: "openai", reply: "from default"}
	gw := newTestGateway(t, "openai", primary)

	got, err := gw.Generate(context.Background(), "no-such-vendor", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unknown provider must fall back, got error: %v", err)
	}
	if got != "from default" {
		t.Errorf("answer = %q, want default provider's reply", got)
	}
}

func TestGateway_EmptyProviderUsesDefault(t *testing.T) {
	primary := &stubProvider{name: "openai", reply: "ok"}
	gw := newTestGateway(t, "openai", primary)

	if p := gw.Resolve(""); p.Name() != "openai" {
		t.Errorf("resolved %q, want default openai", p.Name())
	}
}

func TestGateway_UnconfiguredProviderFailsFast(t *testing.T) {
	unconfigured := NewAnthropicProvider("", "claude-3-sonnet-20240229", 2000, 0.7)
	gw := newTestGateway(t, "anthropic", unconfigured)

	_, err := gw.Generate(context.Background(), "anthropic", []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrProviderUnconfigured) {
		t.Errorf("err = %v, want ErrProviderUnconfigured", err)
	}
}

func TestGateway_GenerationErrorPropagates(t *testing.T) {
	failing := &stubProvider{name: "openai", err: ErrGeneration}
	gw := newTestGateway(t, "openai", failing)

	_, err := gw.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v, want ErrGeneration", err)
	}
}
