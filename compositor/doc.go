// Package compositor places N raw video frames on a shared canvas.
//
// A Session is created once per set of input streams and then called once
// per output frame:
//
//	videos := []compositor.VideoSpec{
//	    {Width: 640, Height: 360, PixelFormat: "I420"},
//	    {Width: 640, Height: 360, PixelFormat: "I420"},
//	}
//	placements := []compositor.Placement{compositor.At(0, 0), compositor.At(0, 360)}
//
//	session, err := compositor.NewSession(videos, placements)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	out, err := session.Compose([][]byte{top, bottom}) // 640x720 I420
//
// Inputs are drawn in order, so later inputs cover earlier ones where they
// overlap. Uncovered canvas areas are black.
//
// # Errors
//
// Every failure is an *Error carrying a Kind and a reason code:
//
//	out, err := session.Compose(frames)
//	switch {
//	case compositor.IsConstructionError(err):
//	    // rebuild the session
//	case err != nil:
//	    log.Printf("dropping frame: %s", compositor.ReasonOf(err))
//	}
//
// Compose errors never invalidate the session.
//
// # Graph Descriptions
//
// NewSession renders the layout as a filter graph description, available
// through Session.Description. BuildDescription and WriteDescription expose
// the same text with an snprintf-like truncation contract.
package compositor
