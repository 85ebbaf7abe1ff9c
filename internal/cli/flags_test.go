package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itkit/internal/config"
)

func TestFlags_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "itkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processors: 2\nfixtures_root: fx\nlog_level: warn\n"), 0644))

	cfg := config.New()
	shared := cfg

	flags := Flags{ConfigFile: path, Processors: 8, FailFast: true, LogLevel: "debug", Runs: 3}
	require.NoError(t, flags.LoadConfig(cfg))

	assert.Same(t, shared, cfg)
	assert.Equal(t, 8, cfg.Processors, "flag overrides file")
	assert.Equal(t, filepath.Join(dir, "fx"), cfg.FixturesRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Flags.FailFast)
	assert.Equal(t, 3, cfg.Flags.Runs)
}

func TestFlags_LoadConfig_KeepsFileProcessors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "itkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processors: 2\n"), 0644))

	cfg := config.New()
	require.NoError(t, (&Flags{ConfigFile: path}).LoadConfig(cfg))
	assert.Equal(t, 2, cfg.Processors)
}

func TestFlags_LoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "itkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processors: [nope\n"), 0644))

	assert.Error(t, (&Flags{ConfigFile: path}).LoadConfig(config.New()))
}
