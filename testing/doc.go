// Package testing provides a simulated composer and packed-frame helpers for
// deterministic tests of code built on the compositor.
//
// # Overview
//
// SimulatedComposer implements interfaces.FrameComposer by copying every
// input straight onto a black canvas, with no filter graph involved. For the
// layouts it accepts (positions and crops on the chroma grid, one pixel
// format) its output is byte-identical to compositor.Session, which makes it
// a reference in tests and a stand-in for hosts that want to exercise their
// plumbing without building graphs.
//
// # Simulation vs Real Implementation
//
//   - Simulation (this package): direct plane copies, a log of every call
//     for verification. Display sizes and mixed formats are rejected.
//
//   - Real (compositor package): a filter graph per session, with scaling,
//     format conversion and statistics.
//
// Both conform to interfaces.FrameComposer and are selected by the factory
// package.
//
// # Usage
//
//	config := &interfaces.ComposerConfig{MaxInputs: 4, MaxDescriptionSize: 4096}
//	sim, err := testing.NewSimulatedComposer(videos, placements, config)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	out, err := sim.Compose(frames)
//	for _, record := range sim.GetComposeLog() {
//	    t.Logf("%d frames -> %s", record.Frames, record.Digest)
//	}
//
// # Frame Helpers
//
// SolidFrame, FillRegion, CheckRegion and PlaneAt build and inspect tightly
// packed planar frames without going through rawvideo.Frame by hand.
//
// # Thread Safety
//
// SimulatedComposer serializes Compose and the log accessors with an
// internal lock.
package testing
