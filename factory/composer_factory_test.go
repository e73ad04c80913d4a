package factory

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/vcompositor/compositor"
	"github.com/opd-ai/vcompositor/interfaces"
	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
	simulation "github.com/opd-ai/vcompositor/testing"
)

func twoInputs() ([]compositor.VideoSpec, []compositor.Placement) {
	videos := []compositor.VideoSpec{
		{Width: 32, Height: 18, PixelFormat: "I420"},
		{Width: 32, Height: 18, PixelFormat: "I420"},
	}
	return videos, []compositor.Placement{compositor.At(0, 0), compositor.At(0, 18)}
}

// clearEnv blanks every factory variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvUseSimulation, EnvMaxInputs, EnvMaxDescriptionSize, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestNewComposerFactoryDefaults(t *testing.T) {
	clearEnv(t)
	config := NewComposerFactory().GetCurrentConfig()

	assert.False(t, config.UseSimulation)
	assert.Equal(t, limits.MaxInputs, config.MaxInputs)
	assert.Equal(t, limits.MaxDescriptionSize, config.MaxDescriptionSize)
	assert.Empty(t, config.LogLevel)
}

func TestEnvironmentVariableParsing(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		expect func(*testing.T, *interfaces.ComposerConfig)
	}{
		{"simulation on", EnvUseSimulation, "true", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.True(t, c.UseSimulation)
		}},
		{"invalid simulation value", EnvUseSimulation, "maybe", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.False(t, c.UseSimulation)
		}},
		{"max inputs", EnvMaxInputs, "4", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, 4, c.MaxInputs)
		}},
		{"max inputs at minimum", EnvMaxInputs, "1", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, 1, c.MaxInputs)
		}},
		{"max inputs zero", EnvMaxInputs, "0", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, limits.MaxInputs, c.MaxInputs)
		}},
		{"max inputs above limit", EnvMaxInputs, "65", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, limits.MaxInputs, c.MaxInputs)
		}},
		{"max inputs not a number", EnvMaxInputs, "many", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, limits.MaxInputs, c.MaxInputs)
		}},
		{"description size", EnvMaxDescriptionSize, "2048", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, 2048, c.MaxDescriptionSize)
		}},
		{"description size below minimum", EnvMaxDescriptionSize, "10", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, limits.MaxDescriptionSize, c.MaxDescriptionSize)
		}},
		{"log level", EnvLogLevel, "WARNING", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Equal(t, "warning", c.LogLevel)
			assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
		}},
		{"invalid log level", EnvLogLevel, "chatty", func(t *testing.T, c *interfaces.ComposerConfig) {
			assert.Empty(t, c.LogLevel)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := logrus.GetLevel()
			t.Cleanup(func() { logrus.SetLevel(original) })
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			tt.expect(t, NewComposerFactory().GetCurrentConfig())
		})
	}
}

func TestCreateComposerReal(t *testing.T) {
	clearEnv(t)
	videos, placements := twoInputs()

	composer, err := NewComposerFactory().CreateComposer(videos, placements)
	require.NoError(t, err)
	defer composer.Close()

	session, ok := composer.(*compositor.Session)
	require.True(t, ok, "expected *compositor.Session, got %T", composer)
	w, h := session.Canvas()
	assert.Equal(t, 32, w)
	assert.Equal(t, 36, h)
}

func TestCreateComposerSimulation(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUseSimulation, "1")
	videos, placements := twoInputs()

	f := NewComposerFactory()
	require.True(t, f.IsUsingSimulation())
	composer, err := f.CreateComposer(videos, placements)
	require.NoError(t, err)

	sim, ok := composer.(*simulation.SimulatedComposer)
	require.True(t, ok, "expected *testing.SimulatedComposer, got %T", composer)
	assert.True(t, sim.IsSimulation())
	assert.Equal(t, 2, sim.InputCount())
}

func TestCreateComposerReturnsUntypedNil(t *testing.T) {
	clearEnv(t)
	videos, _ := twoInputs()
	f := NewComposerFactory()

	for _, simulate := range []bool{false, true} {
		config := f.GetCurrentConfig()
		config.UseSimulation = simulate
		composer, err := f.CreateComposerWithConfig(videos, []compositor.Placement{compositor.At(0, 0)}, config)
		assert.ErrorIs(t, err, compositor.ErrCountMismatch)
		assert.Nil(t, composer)
	}
}

func TestCreateComposerWithConfig(t *testing.T) {
	clearEnv(t)
	videos, placements := twoInputs()
	f := NewComposerFactory()

	_, err := f.CreateComposerWithConfig(videos, placements, &interfaces.ComposerConfig{MaxInputs: 0, MaxDescriptionSize: 4096})
	assert.ErrorIs(t, err, interfaces.ErrInvalidMaxInputs)

	_, err = f.CreateComposerWithConfig(videos, placements, &interfaces.ComposerConfig{MaxInputs: 1, MaxDescriptionSize: 4096})
	assert.ErrorIs(t, err, compositor.ErrCountMismatch)

	_, err = f.CreateComposerWithConfig(videos, placements, &interfaces.ComposerConfig{MaxInputs: 2, MaxDescriptionSize: 64})
	assert.ErrorIs(t, err, compositor.ErrDescriptionTooLong)

	composer, err := f.CreateComposerWithConfig(videos, placements, nil)
	require.NoError(t, err)
	assert.NoError(t, composer.Close())
}

func TestCreateSimulationForTesting(t *testing.T) {
	clearEnv(t)
	videos, placements := twoInputs()
	f := NewComposerFactory()

	sim, err := f.CreateSimulationForTesting(videos, placements, WithMaxInputs(2), WithMaxDescriptionSize(1024))
	require.NoError(t, err)
	assert.Equal(t, 2, sim.Config().MaxInputs)
	assert.Equal(t, 1024, sim.Config().MaxDescriptionSize)
	assert.False(t, f.IsUsingSimulation())

	_, err = f.CreateSimulationForTesting(videos, placements, WithMaxInputs(1))
	assert.ErrorIs(t, err, compositor.ErrCountMismatch)

	_, err = f.CreateSimulationForTesting(videos, placements, WithMaxInputs(-1))
	assert.ErrorIs(t, err, interfaces.ErrInvalidMaxInputs)
}

func TestSimulationMatchesRealComposer(t *testing.T) {
	clearEnv(t)
	videos, placements := twoInputs()
	f := NewComposerFactory()

	session, err := f.CreateComposer(videos, placements)
	require.NoError(t, err)
	defer session.Close()
	f.SwitchToSimulation()
	sim, err := f.CreateComposer(videos, placements)
	require.NoError(t, err)
	defer sim.Close()

	top, err := simulation.SolidFrame(session.PixelFormat(), 32, 18, rawvideo.RGBToYUV(255, 255, 255))
	require.NoError(t, err)
	bottom := make([]byte, len(top))
	for i := range bottom {
		bottom[i] = byte(i)
	}

	want, err := session.Compose([][]byte{top, bottom})
	require.NoError(t, err)
	got, err := sim.Compose([][]byte{top, bottom})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSwitchModes(t *testing.T) {
	clearEnv(t)
	f := NewComposerFactory()

	f.SwitchToSimulation()
	assert.True(t, f.IsUsingSimulation())
	f.SwitchToReal()
	assert.False(t, f.IsUsingSimulation())
}

func TestGetCurrentConfigReturnsCopy(t *testing.T) {
	clearEnv(t)
	f := NewComposerFactory()

	config := f.GetCurrentConfig()
	config.UseSimulation = true
	config.MaxInputs = 3

	assert.False(t, f.IsUsingSimulation())
	assert.Equal(t, limits.MaxInputs, f.GetCurrentConfig().MaxInputs)
}

func TestUpdateConfig(t *testing.T) {
	clearEnv(t)
	original := logrus.GetLevel()
	t.Cleanup(func() { logrus.SetLevel(original) })
	f := NewComposerFactory()

	assert.ErrorIs(t, f.UpdateConfig(nil), ErrNilConfig)
	assert.ErrorIs(t, f.UpdateConfig(&interfaces.ComposerConfig{MaxInputs: 4}), interfaces.ErrInvalidDescriptionSize)
	assert.Error(t, f.UpdateConfig(&interfaces.ComposerConfig{MaxInputs: 4, MaxDescriptionSize: 512, LogLevel: "loud"}))
	assert.Equal(t, limits.MaxInputs, f.GetCurrentConfig().MaxInputs)

	update := &interfaces.ComposerConfig{UseSimulation: true, MaxInputs: 4, MaxDescriptionSize: 512, LogLevel: "error"}
	require.NoError(t, f.UpdateConfig(update))
	update.MaxInputs = 9

	config := f.GetCurrentConfig()
	assert.True(t, config.UseSimulation)
	assert.Equal(t, 4, config.MaxInputs)
	assert.Equal(t, 512, config.MaxDescriptionSize)
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
}

func TestFactoryConcurrentAccess(t *testing.T) {
	clearEnv(t)
	f := NewComposerFactory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				f.SwitchToSimulation()
			} else {
				f.SwitchToReal()
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = f.GetCurrentConfig()
			_ = f.IsUsingSimulation()
		}()
	}
	wg.Wait()
}
