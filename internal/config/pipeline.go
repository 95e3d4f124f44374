package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvCrawlTimeout        = "PROSPECT_PIPELINE_CRAWL_TIMEOUT"
	EnvStreamInterval      = "PROSPECT_JOBS_STREAM_INTERVAL"
	EnvMultiStreamInterval = "PROSPECT_JOBS_MULTI_STREAM_INTERVAL"
)

// PipelineConfig holds qualification pipeline settings, including the
// agent client configuration shared by all pipeline agents.
type PipelineConfig struct {
	CrawlTimeout string               `toml:"crawl_timeout"`
	Agent        gaconfig.AgentConfig `toml:"agent"`
}

// CrawlTimeoutDuration returns CrawlTimeout as a time.Duration.
func (c *PipelineConfig) CrawlTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CrawlTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	if c.CrawlTimeout == "" {
		c.CrawlTimeout = "20s"
	}
	if v := os.Getenv(EnvCrawlTimeout); v != "" {
		c.CrawlTimeout = v
	}
	if _, err := time.ParseDuration(c.CrawlTimeout); err != nil {
		return fmt.Errorf("invalid crawl_timeout: %w", err)
	}
	if c.Agent.Name == "" {
		c.Agent.Name = "prospect-qualifier"
	}
	return FinalizeAgent(&c.Agent)
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.CrawlTimeout != "" {
		c.CrawlTimeout = overlay.CrawlTimeout
	}
	c.Agent.Merge(&overlay.Agent)
}

// JobsConfig holds job progress streaming settings.
type JobsConfig struct {
	StreamInterval      string `toml:"stream_interval"`
	MultiStreamInterval string `toml:"multi_stream_interval"`
}

// StreamIntervalDuration returns StreamInterval as a time.Duration.
func (c *JobsConfig) StreamIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.StreamInterval)
	return d
}

// MultiStreamIntervalDuration returns MultiStreamInterval as a time.Duration.
func (c *JobsConfig) MultiStreamIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.MultiStreamInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *JobsConfig) Finalize() error {
	if c.StreamInterval == "" {
		c.StreamInterval = "1s"
	}
	if c.MultiStreamInterval == "" {
		c.MultiStreamInterval = "2s"
	}
	if v := os.Getenv(EnvStreamInterval); v != "" {
		c.StreamInterval = v
	}
	if v := os.Getenv(EnvMultiStreamInterval); v != "" {
		c.MultiStreamInterval = v
	}
	if _, err := time.ParseDuration(c.StreamInterval); err != nil {
		return fmt.Errorf("invalid stream_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.MultiStreamInterval); err != nil {
		return fmt.Errorf("invalid multi_stream_interval: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *JobsConfig) Merge(overlay *JobsConfig) {
	if overlay.StreamInterval != "" {
		c.StreamInterval = overlay.StreamInterval
	}
	if overlay.MultiStreamInterval != "" {
		c.MultiStreamInterval = overlay.MultiStreamInterval
	}
}
