package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/prospect-labs/prospect/internal/config"
	"github.com/prospect-labs/prospect/internal/crawl"
	"github.com/prospect-labs/prospect/internal/infrastructure"
	"github.com/prospect-labs/prospect/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// shared dependencies of the qualification pipeline.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Agent      gaconfig.AgentConfig
	Crawler    *crawl.Crawler
	Jobs       config.JobsConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Agent:      cfg.Pipeline.Agent,
		Crawler:    crawl.New(cfg.Pipeline.CrawlTimeoutDuration()),
		Jobs:       cfg.Jobs,
	}
}
