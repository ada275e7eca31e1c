// Package config loads partial JSON overrides for stream buffer tuning
// parameters, using pointer fields so that unset fields fall back to
// defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the canonical location for buffer tuning defaults.
const DefaultConfigPath = "config/streambuffer.defaults.json"

// BufferConfig is the root configuration for a stream buffer instance.
// Fields omitted from the source JSON retain their documented defaults, so
// partial configs are safe. The schema intentionally mirrors the public
// setters on buffer.Buffer so the same JSON can seed both startup
// configuration and a runtime PATCH-style update.
type BufferConfig struct {
	Capacity                  *uint32  `json:"capacity,omitempty"`
	MaxAllowedTimeDiffSec     *float64 `json:"max_allowed_time_diff_sec,omitempty"`
	LocalTimeOffsetSec        *float64 `json:"local_time_offset_sec,omitempty"`
	AveragedItemsForFiltering *int     `json:"averaged_items_for_filtering,omitempty"`
	DescriptiveName           *string  `json:"descriptive_name,omitempty"`
	TimeStampReportEnabled    *bool    `json:"time_stamp_report_enabled,omitempty"`
}

// EmptyBufferConfig returns a BufferConfig with every field unset.
func EmptyBufferConfig() *BufferConfig {
	return &BufferConfig{}
}

// LoadBufferConfig loads a BufferConfig from a JSON file. The file must have
// a .json extension and be no larger than 1MB.
func LoadBufferConfig(path string) (*BufferConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyBufferConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that set fields carry sane values.
func (c *BufferConfig) Validate() error {
	if c.Capacity != nil && *c.Capacity == 0 {
		return fmt.Errorf("capacity must be > 0, got %d", *c.Capacity)
	}
	if c.MaxAllowedTimeDiffSec != nil && *c.MaxAllowedTimeDiffSec < 0 {
		return fmt.Errorf("max_allowed_time_diff_sec must be non-negative, got %f", *c.MaxAllowedTimeDiffSec)
	}
	if c.AveragedItemsForFiltering != nil && *c.AveragedItemsForFiltering < 0 {
		return fmt.Errorf("averaged_items_for_filtering must be non-negative, got %d", *c.AveragedItemsForFiltering)
	}
	return nil
}

// GetCapacity returns the configured capacity or the default of 100 slots.
func (c *BufferConfig) GetCapacity() uint32 {
	if c.Capacity == nil {
		return 100
	}
	return *c.Capacity
}

// GetMaxAllowedTimeDiffSec returns the configured interpolation window,
// defaulting to 0.5s.
func (c *BufferConfig) GetMaxAllowedTimeDiffSec() float64 {
	if c.MaxAllowedTimeDiffSec == nil {
		return 0.5
	}
	return *c.MaxAllowedTimeDiffSec
}

// GetLocalTimeOffsetSec returns the configured local time offset, or 0.
func (c *BufferConfig) GetLocalTimeOffsetSec() float64 {
	if c.LocalTimeOffsetSec == nil {
		return 0
	}
	return *c.LocalTimeOffsetSec
}

// GetAveragedItemsForFiltering returns the configured filter window length,
// or the default of 10 samples. 0 disables filtering.
func (c *BufferConfig) GetAveragedItemsForFiltering() int {
	if c.AveragedItemsForFiltering == nil {
		return 10
	}
	return *c.AveragedItemsForFiltering
}

// GetDescriptiveName returns the configured descriptive name, or "".
func (c *BufferConfig) GetDescriptiveName() string {
	if c.DescriptiveName == nil {
		return ""
	}
	return *c.DescriptiveName
}

// GetTimeStampReportEnabled returns whether the time-stamp report table is
// enabled. Disabled by default since it grows without bound while enabled.
func (c *BufferConfig) GetTimeStampReportEnabled() bool {
	if c.TimeStampReportEnabled == nil {
		return false
	}
	return *c.TimeStampReportEnabled
}
