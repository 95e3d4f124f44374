package api

import (
	"github.com/prospect-labs/prospect/internal/agents"
	"github.com/prospect-labs/prospect/internal/attachments"
	"github.com/prospect-labs/prospect/internal/jobs"
	"github.com/prospect-labs/prospect/internal/leads"
	"github.com/prospect-labs/prospect/internal/pipeline"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Leads       leads.System
	Jobs        jobs.Store
	Streamer    *jobs.Streamer
	Attachments attachments.System
	Pipeline    *pipeline.Runner
}

// NewDomain creates all domain systems from the API runtime. The pipeline
// runner is bound to the lifecycle context so qualification runs survive
// their originating requests and stop on shutdown.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	leadsSystem := leads.New(db, runtime.Logger, runtime.Pagination)

	jobStore := jobs.NewStore(db, runtime.Logger)

	streamer := jobs.NewStreamer(
		jobStore,
		runtime.Logger,
		runtime.Jobs.StreamIntervalDuration(),
		runtime.Jobs.MultiStreamIntervalDuration(),
	)

	attachmentsSystem := attachments.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	agentRuntime := &agents.Runtime{
		Agent:   runtime.Agent,
		Crawler: runtime.Crawler,
		Leads:   leadsSystem,
		Logger:  runtime.Logger,
	}

	runner := pipeline.NewRunner(
		runtime.Lifecycle.Context(),
		jobStore,
		leadsSystem,
		agents.NewWrapper(leadsSystem, runtime.Logger),
		agents.NewSet(agentRuntime),
		runtime.Logger,
	)

	return &Domain{
		Leads:       leadsSystem,
		Jobs:        jobStore,
		Streamer:    streamer,
		Attachments: attachmentsSystem,
		Pipeline:    runner,
	}
}
