package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Pipeline.LogLvl)
	assert.Equal(t, 0.2, cfg.Segment.PauseThreshold)
	assert.False(t, cfg.Segment.GateOnThreshold)
	assert.Equal(t, "mfa", cfg.Aligner.Binary)
	assert.Equal(t, 2*time.Hour, cfg.Aligner.Timeout)
	assert.True(t, cfg.TextGrid.NormalizeNFC)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Output.CSV)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  log_level: debug
aligner:
  timeout: 30m
  dictionary: english_us_arpa
workers: 0
`), 0o644))
	t.Setenv("TURNFEAT_OUTPUT_SQLITE_PATH", "/tmp/results.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Pipeline.LogLvl)
	assert.Equal(t, 30*time.Minute, cfg.Aligner.Timeout)
	assert.Equal(t, "english_us_arpa", cfg.Aligner.Dictionary)
	assert.Equal(t, "korean_mfa", cfg.Aligner.AcousticModel)
	assert.Equal(t, 1, cfg.Workers, "workers is clamped to at least one")
	assert.Equal(t, "/tmp/results.db", cfg.Output.SQLitePath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, cfg))

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Contains(t, back, "aligner")
	assert.Contains(t, buf.String(), "timeout: 2h0m0s")
}
