// Package limits provides centralized size constants and validation functions
// for the compositor. It keeps the session, the description builder and the
// filter graph in agreement about what a valid layout is.
//
// # Limits
//
//   - MaxInputs (64): the largest number of inputs a session accepts.
//   - MaxDimension (16384): the largest width or height of an input or canvas.
//   - MaxDescriptionSize (16384 bytes): the default bound for generated graph
//     descriptions; sessions may be configured with another bound.
//   - MaxFrameBytes (256MB): the largest buffer any filter allocates.
//
// # Validation Functions
//
//	if err := limits.ValidateInputCount(len(videos)); err != nil {
//	    // ErrNoInputs or ErrTooManyInputs
//	}
//
// All errors wrap a package sentinel and can be classified with errors.Is.
package limits
