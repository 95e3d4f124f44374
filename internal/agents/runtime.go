package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/prospect-labs/prospect/internal/crawl"
	"github.com/prospect-labs/prospect/internal/leads"
)

// Runtime bundles the dependencies the agent implementations require.
// It is constructed by higher-level composition code from Infrastructure
// and Domain systems.
type Runtime struct {
	Agent   gaconfig.AgentConfig
	Crawler *crawl.Crawler
	Leads   leads.System
	Logger  *slog.Logger
}

// chat performs a single inference against the configured model and returns
// the raw response content. Empty content is an error so the caller's retry
// policy treats it like any other transient model failure.
func (rt *Runtime) chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&rt.Agent)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	content := resp.Content()
	if content == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return content, nil
}
