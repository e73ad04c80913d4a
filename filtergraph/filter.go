package filtergraph

import (
	"fmt"
	"sort"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// Rational is a time base such as 1/25.
type Rational struct {
	Num, Den int
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// LinkProps are the negotiated properties of frames crossing a link.
type LinkProps struct {
	Width    int
	Height   int
	Format   rawvideo.PixelFormat
	TimeBase Rational
}

func (p LinkProps) String() string {
	return fmt.Sprintf("%dx%d %s tb:%s", p.Width, p.Height, p.Format, p.TimeBase)
}

// filter is the behaviour behind one node of the graph.
//
// configure receives the properties of every input link, in pad order, and
// returns the properties of the output link. process turns one frame per
// input into the output frame. Frames handed to process are only valid for
// the duration of the call; the output may reference buffers owned by the
// filter until its next process call.
type filter interface {
	numInputs() int
	numOutputs() int
	configure(in []LinkProps) (LinkProps, error)
	process(in []rawvideo.Frame, out *rawvideo.Frame) error
}

// filterInfo describes a registered filter type.
type filterInfo struct {
	name      string
	shorthand []string          // option names for positional values
	options   []string          // further option names
	aliases   map[string]string // alternate option name to canonical name
	create    func(opts options) (filter, error)
}

func (info *filterInfo) accepts(key string) bool {
	for _, k := range info.shorthand {
		if k == key {
			return true
		}
	}
	for _, k := range info.options {
		if k == key {
			return true
		}
	}
	return false
}

var registry = map[string]*filterInfo{}

func register(info *filterInfo) {
	if _, dup := registry[info.name]; dup {
		panic("filtergraph: duplicate filter " + info.name)
	}
	registry[info.name] = info
}

// Filters lists the names of the registered filters.
func Filters() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// link connects an output pad to an input pad.
type link struct {
	src    *filterContext
	srcPad int
	dst    *filterContext
	dstPad int
	props  LinkProps
}

// filterContext is one filter instance inside a graph.
type filterContext struct {
	name   string
	info   *filterInfo
	f      filter
	inputs []*link
	output []*link

	inFrames []rawvideo.Frame
}

// pull produces the next output frame of c by pulling one frame from every
// input first.
func (c *filterContext) pull(dst *rawvideo.Frame) error {
	defer c.releaseInputs()
	for i, l := range c.inputs {
		if err := l.src.pull(&c.inFrames[i]); err != nil {
			return err
		}
	}
	if err := c.f.process(c.inFrames, dst); err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return nil
}

func (c *filterContext) releaseInputs() {
	for i := range c.inFrames {
		c.inFrames[i].Unref()
	}
}
