package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Generator is the text-generation service: it turns a structured prompt into
// free text or fails. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type agentGenerator struct {
	cfg gaconfig.AgentConfig
}

// NewAgentGenerator returns a Generator backed by a go-agents chat agent.
// Each call creates its own agent from a copy of cfg, so concurrent runs
// share no agent state.
func NewAgentGenerator(cfg gaconfig.AgentConfig) Generator {
	return &agentGenerator{cfg: cfg}
}

func (g *agentGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := g.cfg

	a, err := agent.New(&cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}
