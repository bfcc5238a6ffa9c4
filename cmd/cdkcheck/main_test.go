package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nelson-Lamounier/cdk-monitoring/config"
)

func TestApplyScanFlags_Overrides(t *testing.T) {
	scanTemplates = []string{"cli.yaml"}
	scanPolicyDir = "cli-policies"
	scanOutput = "json"
	scanFailOn = "unknown"
	scanWorkers = 12
	t.Cleanup(func() {
		scanTemplates = nil
		scanPolicyDir = ""
		scanOutput = ""
		scanFailOn = ""
		scanWorkers = 0
	})

	cfg := config.Default()
	cfg.Templates = []string{"file.yaml"}
	applyScanFlags(cfg)

	assert.Equal(t, []string{"cli.yaml"}, cfg.Templates)
	assert.Equal(t, "cli-policies", cfg.PolicyDir)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "unknown", cfg.Output.FailOn)
	assert.Equal(t, 12, cfg.Scan.Workers)
}

func TestApplyScanFlags_UnsetFlagsKeepConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Templates = []string{"file.yaml"}
	cfg.Output.Format = "json"
	applyScanFlags(cfg)

	assert.Equal(t, []string{"file.yaml"}, cfg.Templates)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestApplyWatchFlags(t *testing.T) {
	watchInterval = 30 * time.Second
	t.Cleanup(func() { watchInterval = 0 })

	cfg := config.Default()
	applyWatchFlags(cfg)

	assert.Equal(t, 30*time.Second, cfg.Scan.Interval)
}
