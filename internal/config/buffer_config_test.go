package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBufferConfig_RejectsNonJSONExtension(t *testing.T) {
	_, err := LoadBufferConfig("config.txt")
	require.Error(t, err)
}

func TestLoadBufferConfig_RejectsMissingFile(t *testing.T) {
	_, err := LoadBufferConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadBufferConfig_ParsesPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"capacity": 500, "descriptive_name": "tracker"}`), 0o644))

	cfg, err := LoadBufferConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint32(500), cfg.GetCapacity())
	require.Equal(t, "tracker", cfg.GetDescriptiveName())
	require.Equal(t, 0.5, cfg.GetMaxAllowedTimeDiffSec(), "unset fields retain their default")
}

func TestLoadBufferConfig_RejectsInvalidCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"capacity": 0}`), 0o644))

	_, err := LoadBufferConfig(path)
	require.Error(t, err)
}

func TestValidate_RejectsNegativeMaxAllowedTimeDiff(t *testing.T) {
	bad := -1.0
	cfg := &BufferConfig{MaxAllowedTimeDiffSec: &bad}
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsNegativeAveragedItems(t *testing.T) {
	bad := -1
	cfg := &BufferConfig{AveragedItemsForFiltering: &bad}
	require.Error(t, cfg.Validate())
}

func TestEmptyBufferConfig_Defaults(t *testing.T) {
	cfg := EmptyBufferConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, uint32(100), cfg.GetCapacity())
}
