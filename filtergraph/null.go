package filtergraph

import "github.com/opd-ai/vcompositor/rawvideo"

// nullFilter passes frames through unchanged.
type nullFilter struct{}

func init() {
	register(&filterInfo{
		name:   "null",
		create: func(options) (filter, error) { return nullFilter{}, nil },
	})
}

func (nullFilter) numInputs() int  { return 1 }
func (nullFilter) numOutputs() int { return 1 }

func (nullFilter) configure(in []LinkProps) (LinkProps, error) {
	return in[0], nil
}

func (nullFilter) process(in []rawvideo.Frame, out *rawvideo.Frame) error {
	out.Ref(&in[0])
	return nil
}
