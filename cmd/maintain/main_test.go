package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"}, {"bot"}, {"migrate"}, {"import"}, {"check"}, {"commands"}, {"task", "run"}, {"task", "list"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "./config.yaml", flag.DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("bot"))
	assert.NotNil(t, importCmd.Flags().Lookup("data-dir"))
}

func TestPrintChecks(t *testing.T) {
	var buf bytes.Buffer
	failed := printChecks(&buf, []checkResult{
		{name: "config", info: "database=sqlite"},
		{name: "gemini", skipped: true},
		{name: "telegram", err: errors.New("unauthorized")},
	})
	assert.Equal(t, 1, failed)
	out := buf.String()
	assert.Contains(t, out, "✅ config")
	assert.Contains(t, out, "⚠️  gemini    not configured")
	assert.Contains(t, out, "❌ telegram  unauthorized")
}
