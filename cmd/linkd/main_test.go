package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/linkd/internal/config"
	"github.com/fyrsmithlabs/linkd/internal/pipeline"
	"github.com/fyrsmithlabs/linkd/internal/report"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"discover", "rules", "link", "run", "serve", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestLoadOrDiscover(t *testing.T) {
	contractsDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(contractsDir, "SOW-BCH-Bayer 2022-03-01.txt"),
		[]byte("Statement of Work with Bayer AG."), 0o640))

	cfg := &config.Config{
		ContractsDir: contractsDir,
		InvoicesDir:  t.TempDir(),
		OutputDir:    t.TempDir(),
		Workers:      1,
	}

	logger := zaptest.NewLogger(t)
	pipe, err := pipeline.New(cfg, logger)
	require.NoError(t, err)

	rt := &runtime{cfg: cfg, logger: logger, pipe: pipe}

	t.Run("discovers fresh when no report exists", func(t *testing.T) {
		disc, err := loadOrDiscover(context.Background(), rt)
		require.NoError(t, err)
		assert.Equal(t, 1, disc.TotalDocuments)
	})

	t.Run("reuses a persisted report", func(t *testing.T) {
		persisted := report.NewDiscovery(contractsDir, 1, nil)
		path := filepath.Join(cfg.OutputDir, "discovery.json")
		require.NoError(t, report.WriteJSON(path, persisted))

		disc, err := loadOrDiscover(context.Background(), rt)
		require.NoError(t, err)
		assert.Equal(t, persisted.RunID, disc.RunID)
	})
}
