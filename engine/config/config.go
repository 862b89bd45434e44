package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/visible"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultProfileInterval = "1s"
)

// Config holds the process-wide settings of the frame pipeline. It is loaded from
// TOML; every key is optional and falls back to the values from Default.
type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// LogFormat selects the zap encoding: console or json.
	LogFormat string `toml:"log_format"`
	// LightGroupPolicy is "strict" or "allow-empty".
	LightGroupPolicy string `toml:"light_group_policy"`
	// PassWorkers is the number of pass handler goroutines; 0 picks a default.
	PassWorkers int `toml:"pass_workers"`
	// PassQueueSize is the pass task queue capacity; 0 picks a default.
	PassQueueSize int `toml:"pass_queue_size"`
	// Profiling enables the frame profiler.
	Profiling bool `toml:"profiling"`
	// ProfileInterval is how often the profiler reports, as a Go duration string.
	ProfileInterval string `toml:"profile_interval"`
	// ShadowDepthBias is the constant depth bias of shadow pipelines.
	ShadowDepthBias int32 `toml:"shadow_depth_bias"`
	// ShadowSlopeScale is the slope-scaled depth bias of shadow pipelines.
	ShadowSlopeScale float32 `toml:"shadow_slope_scale"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		LogLevel:         defaultLogLevel,
		LogFormat:        defaultLogFormat,
		LightGroupPolicy: visible.LightGroupPolicyStrict.String(),
		ProfileInterval:  defaultProfileInterval,
		ShadowDepthBias:  light.DefaultShadowDepthBias,
		ShadowSlopeScale: light.DefaultShadowSlopeScale,
	}
}

// Decode reads a TOML document on top of Default and validates the result.
// Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode or validation error
func Decode(r io.Reader) (Config, error) {
	c := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	// Explicitly empty strings mean "use the default".
	c.LogLevel = common.Coalesce(c.LogLevel, defaultLogLevel)
	c.LogFormat = common.Coalesce(c.LogFormat, defaultLogFormat)
	c.LightGroupPolicy = common.Coalesce(c.LightGroupPolicy, visible.LightGroupPolicyStrict.String())
	c.ProfileInterval = common.Coalesce(c.ProfileInterval, defaultProfileInterval)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Parse decodes a TOML document held in memory. See Decode.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Load decodes the TOML file at path. See Decode.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the decoded configuration
//   - error: an error if the file cannot be opened or decoded
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	return c, nil
}

// Validate checks every field and returns all problems joined.
//
// Returns:
//   - error: nil if the configuration is usable
func (c Config) Validate() error {
	var errs []error
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: log_level: %w", err))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("config: log_format: want console or json, got %q", c.LogFormat))
	}
	if _, err := visible.ParseLightGroupPolicy(c.LightGroupPolicy); err != nil {
		errs = append(errs, fmt.Errorf("config: light_group_policy: %w", err))
	}
	if c.PassWorkers < 0 {
		errs = append(errs, fmt.Errorf("config: pass_workers: must not be negative, got %d", c.PassWorkers))
	}
	if c.PassQueueSize < 0 {
		errs = append(errs, fmt.Errorf("config: pass_queue_size: must not be negative, got %d", c.PassQueueSize))
	}
	if d, err := time.ParseDuration(c.ProfileInterval); err != nil {
		errs = append(errs, fmt.Errorf("config: profile_interval: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("config: profile_interval: must be positive, got %s", d))
	}
	if c.ShadowSlopeScale < 0 {
		errs = append(errs, fmt.Errorf("config: shadow_slope_scale: must not be negative, got %g", c.ShadowSlopeScale))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed light group policy, strict if the name is invalid.
func (c Config) Policy() visible.LightGroupPolicy {
	p, _ := visible.ParseLightGroupPolicy(c.LightGroupPolicy)
	return p
}

// Interval returns the parsed profiler interval, one second if the value is invalid.
func (c Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.ProfileInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// Logger builds a zap logger with the configured level and encoding.
//
// Returns:
//   - *zap.Logger: the logger
//   - error: an error if the level is invalid or the logger cannot be built
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: log_level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.Encoding = c.LogFormat

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}

// AssemblerOptions returns the visible-set options the configuration implies.
//
// Parameters:
//   - logger: the logger handed to every assembler; nil leaves the default
//
// Returns:
//   - []visible.AssemblerBuilderOption: options for visible.NewAssembler
func (c Config) AssemblerOptions(logger *zap.Logger) []visible.AssemblerBuilderOption {
	return []visible.AssemblerBuilderOption{
		visible.WithLogger(logger),
		visible.WithLightGroupPolicy(c.Policy()),
	}
}

// RendererOptions returns the renderer options the configuration implies. Zero
// worker and queue sizes keep the renderer defaults.
//
// Parameters:
//   - logger: the renderer logger; nil leaves the default
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewRenderer
func (c Config) RendererOptions(logger *zap.Logger) []renderer.RendererBuilderOption {
	opts := []renderer.RendererBuilderOption{
		renderer.WithLogger(logger),
		renderer.WithShadowDepthBias(c.ShadowDepthBias, c.ShadowSlopeScale),
	}
	if c.PassWorkers > 0 {
		opts = append(opts, renderer.WithPassWorkers(c.PassWorkers))
	}
	if c.PassQueueSize > 0 {
		opts = append(opts, renderer.WithPassQueueSize(c.PassQueueSize))
	}
	return opts
}
