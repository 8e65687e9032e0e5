package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "resolve", "aliases", "stats", "serve", "migrate"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	assert.NotNil(t, run.Flags().Lookup("skip-unchanged"))

	resolve, _, err := root.Find([]string{"resolve"})
	require.NoError(t, err)
	assert.NotNil(t, resolve.Flags().Lookup("out"))
}

func TestMissingConfigFileFailsBeforeConnecting(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "stats"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "read config file")
}

func TestAliasesRequiresKey(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"aliases"})

	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"updated": 2}))
	assert.Equal(t, "{\n  \"updated\": 2\n}\n", buf.String())
}
