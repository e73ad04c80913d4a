// Package interfaces defines the host-facing contract of the compositor.
//
// [FrameComposer] is what a host binding consumes. The factory package
// returns either a filter graph backed compositor.Session or a
// testing.SimulatedComposer behind it, so host code does not change between
// production and tests:
//
//	composer, err := factory.NewComposerFactory().CreateComposer(videos, placements)
//	if err != nil {
//	    return err
//	}
//	defer composer.Close()
//
//	out, err := composer.Compose(frames)
//
// # Configuration
//
// [ComposerConfig] holds the settings shared by both implementations:
//
//	config := &interfaces.ComposerConfig{
//	    UseSimulation:      false,
//	    MaxInputs:          16,
//	    MaxDescriptionSize: 4096,
//	}
//	if err := config.Validate(); err != nil {
//	    log.Fatalf("invalid config: %v", err)
//	}
//
// # Thread Safety
//
// A FrameComposer is not safe for concurrent use. Distinct composers share
// nothing and may be used from different goroutines.
package interfaces
