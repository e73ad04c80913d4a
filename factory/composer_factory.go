package factory

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vcompositor/compositor"
	"github.com/opd-ai/vcompositor/interfaces"
	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/testing"
)

// Environment variables read by NewComposerFactory.
const (
	EnvUseSimulation      = "VCOMP_USE_SIMULATION"
	EnvMaxInputs          = "VCOMP_MAX_INPUTS"
	EnvMaxDescriptionSize = "VCOMP_MAX_DESCRIPTION_SIZE"
	EnvLogLevel           = "VCOMP_LOG_LEVEL"
)

// Validation constants for configuration bounds checking.
const (
	// MinMaxInputs is the smallest accepted input limit.
	MinMaxInputs = 1
	// MinDescriptionSize is the smallest accepted description limit. Even a
	// single input needs more than this.
	MinDescriptionSize = 64
)

var _ interfaces.FrameComposer = (*compositor.Session)(nil)

// ErrNilConfig is returned by UpdateConfig when no configuration is given.
var ErrNilConfig = errors.New("config cannot be nil")

// ComposerFactory creates composer implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type ComposerFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.ComposerConfig
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.ComposerConfig)

// NewComposerFactory creates a new factory with default configuration
// overridden by the VCOMP_* environment variables.
func NewComposerFactory() *ComposerFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	applyLogLevel(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &ComposerFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig returns the library limits with the graph-backed
// composer selected.
func createDefaultConfig() *interfaces.ComposerConfig {
	return &interfaces.ComposerConfig{
		UseSimulation:      false,
		MaxInputs:          limits.MaxInputs,
		MaxDescriptionSize: limits.MaxDescriptionSize,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
// Values that fail to parse or fall out of bounds are logged and ignored.
func applyEnvironmentOverrides(config *interfaces.ComposerConfig) {
	parseSimulationSetting(config)
	parseBoundedSetting(EnvMaxInputs, MinMaxInputs, limits.MaxInputs, &config.MaxInputs)
	parseBoundedSetting(EnvMaxDescriptionSize, MinDescriptionSize, limits.MaxDescriptionSize, &config.MaxDescriptionSize)
	parseLogLevelSetting(config)
}

// parseSimulationSetting updates UseSimulation from VCOMP_USE_SIMULATION.
func parseSimulationSetting(config *interfaces.ComposerConfig) {
	useSimStr := os.Getenv(EnvUseSimulation)
	if useSimStr == "" {
		return
	}
	useSim, err := strconv.ParseBool(useSimStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseSimulationSetting",
			"env_var":     EnvUseSimulation,
			"value":       useSimStr,
			"error":       err.Error(),
			"using_value": config.UseSimulation,
		}).Warn("Failed to parse VCOMP_USE_SIMULATION environment variable, using default")
		return
	}
	config.UseSimulation = useSim
}

// parseBoundedSetting updates *target from an integer environment variable
// when the value parses and lies within [lo, hi].
func parseBoundedSetting(envVar string, lo, hi int, target *int) {
	str := os.Getenv(envVar)
	if str == "" {
		return
	}
	value, err := strconv.Atoi(str)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseBoundedSetting",
			"env_var":     envVar,
			"value":       str,
			"error":       err.Error(),
			"using_value": *target,
		}).Warn("Failed to parse environment variable, using default")
		return
	}
	if value < lo || value > hi {
		logrus.WithFields(logrus.Fields{
			"function":    "parseBoundedSetting",
			"env_var":     envVar,
			"value":       value,
			"min":         lo,
			"max":         hi,
			"using_value": *target,
		}).Warn("Environment variable value out of bounds, using default")
		return
	}
	*target = value
}

// parseLogLevelSetting updates LogLevel from VCOMP_LOG_LEVEL.
func parseLogLevelSetting(config *interfaces.ComposerConfig) {
	levelStr := os.Getenv(EnvLogLevel)
	if levelStr == "" {
		return
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "parseLogLevelSetting",
			"env_var":  EnvLogLevel,
			"value":    levelStr,
			"error":    err.Error(),
		}).Warn("Failed to parse VCOMP_LOG_LEVEL environment variable, keeping current level")
		return
	}
	config.LogLevel = level.String()
}

// applyLogLevel sets the global logrus level when the config names one.
func applyLogLevel(config *interfaces.ComposerConfig) {
	if config.LogLevel == "" {
		return
	}
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return
	}
	logrus.SetLevel(level)
}

// logConfigurationInfo logs the final configuration settings.
func logConfigurationInfo(config *interfaces.ComposerConfig) {
	logrus.WithFields(logrus.Fields{
		"function":             "NewComposerFactory",
		"use_simulation":       config.UseSimulation,
		"max_inputs":           config.MaxInputs,
		"max_description_size": config.MaxDescriptionSize,
		"log_level":            logrus.GetLevel().String(),
	}).Info("Created composer factory with configuration")
}

// CreateComposer creates a composer for the given layout based on the
// current configuration.
func (f *ComposerFactory) CreateComposer(videos []compositor.VideoSpec, placements []compositor.Placement) (interfaces.FrameComposer, error) {
	return f.CreateComposerWithConfig(videos, placements, f.GetCurrentConfig())
}

// CreateComposerWithConfig creates a composer with custom configuration.
// A nil config selects the factory default.
func (f *ComposerFactory) CreateComposerWithConfig(videos []compositor.VideoSpec, placements []compositor.Placement, config *interfaces.ComposerConfig) (interfaces.FrameComposer, error) {
	if config == nil {
		config = f.GetCurrentConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid composer config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":             "CreateComposerWithConfig",
		"use_simulation":       config.UseSimulation,
		"inputs":               len(videos),
		"max_inputs":           config.MaxInputs,
		"max_description_size": config.MaxDescriptionSize,
	}).Info("Creating composer implementation")

	if config.UseSimulation {
		sim, err := testing.NewSimulatedComposer(videos, placements, config)
		if err != nil {
			return nil, err
		}
		return sim, nil
	}

	session, err := compositor.NewSession(videos, placements,
		compositor.WithMaxInputs(config.MaxInputs),
		compositor.WithMaxDescriptionSize(config.MaxDescriptionSize))
	if err != nil {
		return nil, err
	}
	return session, nil
}

// WithMaxInputs sets the input limit for the test configuration.
func WithMaxInputs(n int) TestConfigOption {
	return func(c *interfaces.ComposerConfig) {
		c.MaxInputs = n
	}
}

// WithMaxDescriptionSize sets the description limit for the test configuration.
func WithMaxDescriptionSize(n int) TestConfigOption {
	return func(c *interfaces.ComposerConfig) {
		c.MaxDescriptionSize = n
	}
}

// CreateSimulationForTesting creates a simulated composer with the library
// limits and any overrides from opts.
func (f *ComposerFactory) CreateSimulationForTesting(videos []compositor.VideoSpec, placements []compositor.Placement, opts ...TestConfigOption) (*testing.SimulatedComposer, error) {
	testConfig := &interfaces.ComposerConfig{
		UseSimulation:      true,
		MaxInputs:          limits.MaxInputs,
		MaxDescriptionSize: limits.MaxDescriptionSize,
	}
	for _, opt := range opts {
		opt(testConfig)
	}
	if err := testConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid test config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "CreateSimulationForTesting",
		"max_inputs": testConfig.MaxInputs,
		"inputs":     len(videos),
	}).Info("Creating simulated composer for testing")

	return testing.NewSimulatedComposer(videos, placements, testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *ComposerFactory) SwitchToSimulation() {
	f.setSimulation(true)
}

// SwitchToReal switches the configuration to use the filter graph session
func (f *ComposerFactory) SwitchToReal() {
	f.setSimulation(false)
}

func (f *ComposerFactory) setSimulation(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "setSimulation",
		"previous": f.defaultConfig.UseSimulation,
		"current":  on,
	}).Info("Switching composer factory mode")

	f.defaultConfig.UseSimulation = on
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *ComposerFactory) GetCurrentConfig() *interfaces.ComposerConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	config := *f.defaultConfig
	return &config
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *ComposerFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig validates and replaces the factory's default configuration,
// applying its log level if it names one.
func (f *ComposerFactory) UpdateConfig(config *interfaces.ComposerConfig) error {
	if config == nil {
		return ErrNilConfig
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.LogLevel != "" {
		if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_max_inputs": f.defaultConfig.MaxInputs,
		"new_max_inputs": config.MaxInputs,
	}).Info("Updating factory configuration")

	updated := *config
	f.defaultConfig = &updated
	applyLogLevel(f.defaultConfig)
	return nil
}
