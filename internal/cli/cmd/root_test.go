package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/curiohub/curiohub/internal/cli/config"
	"github.com/curiohub/curiohub/internal/cli/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	formatter.Out = out
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"feed"}, {"card"}, {"vote"}, {"save"}, {"admin", "approve"}, {"admin", "reject"}, {"admin", "recount"}, {"config", "set"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.NotNil(t, c)
	}
}

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	rootCmd.SetArgs([]string{"--config", path, "config", "set", "feed.limit", "7"})
	require.NoError(t, rootCmd.Execute())

	out := &bytes.Buffer{}
	formatter.Out = out
	rootCmd.SetArgs([]string{"--config", path, "config", "get", "feed.limit"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "7")
	assert.Equal(t, 7, config.GetInt("feed.limit"))
}

func TestRejectsUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "--output", "yaml", "tags")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
	outputFmt = ""
}

func TestVoteNeedsID(t *testing.T) {
	_, err := run(t, "vote")
	assert.Error(t, err)
}
