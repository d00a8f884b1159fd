package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:               "./test.db",
		Port:                 "8080",
		APIAccessKey:         "test-key",
		SourcesFile:          "./sources.yml",
		WorkerCount:          2,
		SchedulerInterval:    30,
		IngestInterval:       900,
		RetentionWindowHours: 48,
		HTTPTimeout:          5,
		ImageWorkers:         5,
		UserAgent:            "Test Agent",
		Debug:                true,
		Version:              "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected db path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.RetentionWindowHours != 48 {
		t.Errorf("Expected retention window 48, got %d", cfg.RetentionWindowHours)
	}
	if cfg.HTTPTimeout != 5 {
		t.Errorf("Expected HTTP timeout 5, got %d", cfg.HTTPTimeout)
	}
	if cfg.ImageWorkers != 5 {
		t.Errorf("Expected 5 image workers, got %d", cfg.ImageWorkers)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
