// Package factory creates FrameComposer implementations.
//
// The factory hides the choice between the filter graph backed
// compositor.Session and the simulated composer of the testing package, so
// host code is the same in production and in tests.
//
// # Configuration
//
// The factory supports configuration via environment variables:
//   - VCOMP_USE_SIMULATION: "true" or "false" to enable simulation mode
//   - VCOMP_MAX_INPUTS: input limit in [1, limits.MaxInputs]
//   - VCOMP_MAX_DESCRIPTION_SIZE: description limit in bytes, in
//     [MinDescriptionSize, limits.MaxDescriptionSize]
//   - VCOMP_LOG_LEVEL: a logrus level name applied globally
//
// Invalid values are logged at Warn level and the default is kept.
//
// # Usage
//
//	f := factory.NewComposerFactory()
//	composer, err := f.CreateComposer(videos, placements)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer composer.Close()
//
// # Testing Support
//
// CreateSimulationForTesting returns the concrete *testing.SimulatedComposer
// so tests can inspect its compose log:
//
//	func TestMyFeature(t *testing.T) {
//	    sim, err := factory.NewComposerFactory().CreateSimulationForTesting(videos, placements)
//	    // Use sim in tests...
//	}
package factory
