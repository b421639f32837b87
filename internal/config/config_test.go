package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"magnitude", "cdi", "alert", "rms", "depth", "longitude"}, cfg.Data.Features)
	assert.Equal(t, "tsunami", cfg.Data.Target)
	assert.Equal(t, 5, cfg.CV.Folds)
	assert.Equal(t, 3, cfg.CV.Trials)
	assert.False(t, cfg.CV.VaryFoldSeed)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
cross_validation:
  trials: 2
  vary_fold_seed: true
output:
  dir: out
models:
  random_forest:
    n_trees: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.CV.Trials)
	assert.True(t, cfg.CV.VaryFoldSeed)
	assert.Equal(t, 5, cfg.CV.Folds)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, 10, cfg.Models.RandomForest.NTrees)
	assert.Equal(t, int64(42), cfg.Models.RandomForest.RandomSeed)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cross_validation:\n  folds: 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folds")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
