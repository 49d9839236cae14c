package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	want := []string{"dbinit", "ingest", "enrich", "run", "serve"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "missing subcommand %s", name)
	}
}

func TestLoadConfig_VerboseFlagOverrides(t *testing.T) {
	flagConfig = ""
	flagVerbose = true
	defer func() { flagVerbose = false }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}
