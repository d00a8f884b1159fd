package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./newspulse.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port                 string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey         string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	SourcesFile          string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML file with feed source definitions"`
	KeywordsFile         string `long:"keywords-file" env:"KEYWORDS_FILE" description:"YAML file overriding the built-in keyword categories"`
	WorkerCount          int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for task processing"`
	SchedulerInterval    int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`
	IngestInterval       int    `long:"ingest-interval" env:"INGEST_INTERVAL" default:"900" description:"Minimum interval between ingestion runs in seconds"`
	RetentionWindowHours int    `long:"retention-window-hours" env:"RETENTION_WINDOW_HOURS" default:"48" description:"Maximum item age in hours before eviction"`
	HTTPTimeout          int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"5" description:"Timeout in seconds for feed and article page fetches"`
	ImageWorkers         int    `long:"image-workers" env:"IMAGE_WORKERS" default:"5" description:"Concurrency limit for image resolution per source"`
	ExtractContent       bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Enable article content extraction"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsPulse/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		Port:                 raw.Port,
		APIAccessKey:         raw.APIAccessKey,
		SourcesFile:          raw.SourcesFile,
		KeywordsFile:         raw.KeywordsFile,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		IngestInterval:       raw.IngestInterval,
		RetentionWindowHours: raw.RetentionWindowHours,
		HTTPTimeout:          raw.HTTPTimeout,
		ImageWorkers:         raw.ImageWorkers,
		ExtractContent:       raw.ExtractContent,
		UserAgent:            raw.UserAgent,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
