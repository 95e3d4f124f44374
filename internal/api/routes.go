package api

import (
	"net/http"

	"github.com/prospect-labs/prospect/internal/config"
	"github.com/prospect-labs/prospect/internal/jobs"
	"github.com/prospect-labs/prospect/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Leads.Handler(domain.Pipeline).Routes(),
		jobs.NewHandler(domain.Jobs, domain.Streamer, runtime.Logger).Routes(),
		domain.Attachments.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
