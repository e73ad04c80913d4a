package filtergraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vcompositor/limits"
	"github.com/opd-ai/vcompositor/rawvideo"
)

// DefaultMaxFilters bounds the number of filters a graph may hold.
const DefaultMaxFilters = 4 * limits.MaxInputs * 4

// Graph is a directed acyclic graph of video filters.
//
// A Graph is built in three steps: Alloc, Parse and Config. After Config the
// graph exposes its BufferSource endpoints, which accept input frames, and
// its single BufferSink, which produces composed frames on demand. A Graph
// is not safe for concurrent use.
type Graph struct {
	filters    []*filterContext
	maxFilters int
	configured bool
	freed      bool

	sources []*BufferSource
	sinks   []*BufferSink
}

// Option configures a Graph.
type Option func(*Graph)

// WithMaxFilters overrides the maximum number of filters in the graph.
func WithMaxFilters(n int) Option {
	return func(g *Graph) {
		g.maxFilters = n
	}
}

// Alloc creates an empty graph.
func Alloc(opts ...Option) (*Graph, error) {
	g := &Graph{maxFilters: DefaultMaxFilters}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxFilters <= 0 {
		return nil, fmt.Errorf("%w: filter limit %d", ErrAllocation, g.maxFilters)
	}
	return g, nil
}

// Parse adds the filters and links described by desc to the graph.
//
// Labels are resolved within desc: every label must appear exactly once as
// an output and exactly once as an input. A filter that is not the first of
// its chain receives the output of its predecessor on the input pad that
// follows its labeled inputs. Giving a filter more links than it has pads
// is a parse error; pads left unlinked are reported by Config. Nothing is
// added when parsing fails.
func (g *Graph) Parse(desc string) error {
	if g.freed {
		return ErrFreed
	}
	if g.configured {
		return fmt.Errorf("%w: graph already configured", ErrParse)
	}

	chains, err := parseDescription(desc)
	if err != nil {
		return err
	}

	var created []*filterContext
	var links []*link
	type labelEnd struct {
		ctx    *filterContext
		pad    int
		offset int
	}
	openOutputs := map[string]labelEnd{}
	openInputs := map[string]labelEnd{}
	danglingLabel := func() error {
		label, first := "", -1
		for _, open := range []map[string]labelEnd{openInputs, openOutputs} {
			for l, end := range open {
				if first < 0 || end.offset < first || end.offset == first && l < label {
					label, first = l, end.offset
				}
			}
		}
		if first < 0 {
			return nil
		}
		return parseErrorf(first, "dangling link label [%s]", label)
	}

	connect := func(src *filterContext, srcPad int, dst *filterContext, dstPad int) {
		l := &link{src: src, srcPad: srcPad, dst: dst, dstPad: dstPad}
		src.output[srcPad] = l
		dst.inputs[dstPad] = l
		links = append(links, l)
	}

	for _, chain := range chains {
		var prev *filterContext
		for pos, spec := range chain {
			if len(g.filters)+len(created) >= g.maxFilters {
				return fmt.Errorf("%w: more than %d filters", ErrAllocation, g.maxFilters)
			}
			ctx, err := g.newFilter(spec, len(g.filters)+len(created))
			if err != nil {
				return err
			}
			if g.lookup(ctx.name, created) != nil {
				return parseErrorf(spec.offset, "duplicate filter instance %q", ctx.name)
			}
			created = append(created, ctx)

			nIn := len(spec.inputs)
			if pos > 0 {
				nIn++
			}
			// Pads left without a link stay open and fail in Config.
			if nIn > ctx.f.numInputs() {
				return parseErrorf(spec.offset, "filter %s has %d inputs, %d given",
					spec.name, ctx.f.numInputs(), nIn)
			}
			nOut := len(spec.outputs)
			if pos < len(chain)-1 {
				nOut++
			}
			if nOut > ctx.f.numOutputs() {
				return parseErrorf(spec.offset, "filter %s has %d outputs, %d given",
					spec.name, ctx.f.numOutputs(), nOut)
			}

			for pad, label := range spec.inputs {
				if out, ok := openOutputs[label]; ok {
					delete(openOutputs, label)
					connect(out.ctx, out.pad, ctx, pad)
					continue
				}
				if _, dup := openInputs[label]; dup {
					return parseErrorf(spec.offset, "link label [%s] used as input twice", label)
				}
				openInputs[label] = labelEnd{ctx: ctx, pad: pad, offset: spec.offset}
			}
			if prev != nil {
				connect(prev, 0, ctx, len(spec.inputs))
			}
			for pad, label := range spec.outputs {
				if in, ok := openInputs[label]; ok {
					delete(openInputs, label)
					connect(ctx, pad, in.ctx, in.pad)
					continue
				}
				if _, dup := openOutputs[label]; dup {
					return parseErrorf(spec.offset, "link label [%s] used as output twice", label)
				}
				openOutputs[label] = labelEnd{ctx: ctx, pad: pad, offset: spec.offset}
			}
			prev = ctx
		}
	}

	if err := danglingLabel(); err != nil {
		return err
	}

	g.filters = append(g.filters, created...)
	logrus.WithFields(logrus.Fields{
		"function": "Parse",
		"filters":  len(created),
		"links":    len(links),
	}).Debug("Parsed filter graph description")
	return nil
}

func (g *Graph) newFilter(spec *filterSpec, index int) (*filterContext, error) {
	info, ok := registry[spec.name]
	if !ok {
		return nil, parseErrorf(spec.offset, "no such filter: %q", spec.name)
	}
	opts, err := parseOptions(info, spec.args)
	if err != nil {
		return nil, parseErrorf(spec.offset, "%s: %v", spec.name, err)
	}
	f, err := info.create(opts)
	if err != nil {
		return nil, parseErrorf(spec.offset, "%s: %v", spec.name, err)
	}

	name := spec.instance
	if name == "" {
		name = fmt.Sprintf("Parsed_%s_%d", spec.name, index)
	}

	ctx := &filterContext{
		name:     name,
		info:     info,
		f:        f,
		inputs:   make([]*link, f.numInputs()),
		output:   make([]*link, f.numOutputs()),
		inFrames: make([]rawvideo.Frame, f.numInputs()),
	}
	switch endpoint := f.(type) {
	case *BufferSource:
		endpoint.graph, endpoint.ctx = g, ctx
	case *BufferSink:
		endpoint.graph, endpoint.ctx = g, ctx
	}
	return ctx, nil
}

func (g *Graph) lookup(name string, pending []*filterContext) *filterContext {
	for _, list := range [][]*filterContext{g.filters, pending} {
		for _, c := range list {
			if c.name == name {
				return c
			}
		}
	}
	return nil
}

// Config checks that every pad is connected, negotiates link properties in
// topological order and allocates the buffers each filter reuses between
// frames. On success the endpoints become available through Sources and
// Sink.
func (g *Graph) Config() error {
	if g.freed {
		return ErrFreed
	}
	if len(g.filters) == 0 {
		return configErrorf("empty graph")
	}

	for _, c := range g.filters {
		for pad, l := range c.inputs {
			if l == nil {
				return configErrorf("input pad %d of %s is not connected", pad, c.name)
			}
		}
		for pad, l := range c.output {
			if l == nil {
				return configErrorf("output pad %d of %s is not connected", pad, c.name)
			}
		}
	}

	order, err := g.topologicalOrder()
	if err != nil {
		return err
	}

	for _, c := range order {
		in := make([]LinkProps, len(c.inputs))
		for i, l := range c.inputs {
			in[i] = l.props
		}
		props, err := c.f.configure(in)
		if err != nil {
			if errors.Is(err, limits.ErrFrameTooLarge) {
				return fmt.Errorf("%w: %s: %w", ErrAllocation, c.name, err)
			}
			return configErrorf("%s: %v", c.name, err)
		}
		for _, l := range c.output {
			l.props = props
		}
	}

	g.sources, g.sinks = nil, nil
	for _, c := range g.filters {
		if len(c.inputs) == 0 {
			if src, ok := c.f.(*BufferSource); ok {
				g.sources = append(g.sources, src)
			}
		}
		if len(c.output) == 0 {
			if sink, ok := c.f.(*BufferSink); ok {
				g.sinks = append(g.sinks, sink)
			}
		}
	}
	g.configured = true

	logrus.WithFields(logrus.Fields{
		"function": "Config",
		"filters":  len(g.filters),
		"sources":  len(g.sources),
		"sinks":    len(g.sinks),
	}).Debug("Configured filter graph")
	return nil
}

// topologicalOrder sorts the filters so that every filter follows the
// filters feeding it. Ties keep declaration order.
func (g *Graph) topologicalOrder() ([]*filterContext, error) {
	pending := make(map[*filterContext]int, len(g.filters))
	for _, c := range g.filters {
		pending[c] = len(c.inputs)
	}

	order := make([]*filterContext, 0, len(g.filters))
	for len(order) < len(g.filters) {
		progressed := false
		for _, c := range g.filters {
			if n, ok := pending[c]; !ok || n > 0 {
				continue
			}
			delete(pending, c)
			order = append(order, c)
			for _, l := range c.output {
				pending[l.dst]--
			}
			progressed = true
		}
		if !progressed {
			return nil, configErrorf("graph contains a cycle")
		}
	}
	return order, nil
}

// Sources returns the input endpoints in declaration order, or nil before
// Config.
func (g *Graph) Sources() []*BufferSource {
	if !g.configured || g.freed {
		return nil
	}
	return g.sources
}

// Sink returns the output endpoint, or nil unless the configured graph has
// exactly one.
func (g *Graph) Sink() *BufferSink {
	if !g.configured || g.freed || len(g.sinks) != 1 {
		return nil
	}
	return g.sinks[0]
}

// Dump describes the filters and negotiated links of the graph.
func (g *Graph) Dump() string {
	var b strings.Builder
	for _, c := range g.filters {
		fmt.Fprintf(&b, "%s (%s)\n", c.name, c.info.name)
		for pad, l := range c.output {
			if l == nil {
				continue
			}
			fmt.Fprintf(&b, "  out%d -> %s:in%d", pad, l.dst.name, l.dstPad)
			if g.configured {
				fmt.Fprintf(&b, " %s", l.props)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Free releases every filter and endpoint. Calling Free again is a no-op.
func (g *Graph) Free() {
	if g == nil || g.freed {
		return
	}
	for _, src := range g.sources {
		src.Flush()
	}
	for _, c := range g.filters {
		c.releaseInputs()
		c.inputs, c.output = nil, nil
	}
	g.filters, g.sources, g.sinks = nil, nil, nil
	g.freed = true
}

// Build allocates, parses and configures a graph that must expose exactly
// nInputs sources and one sink. The graph is freed on any failure.
func Build(desc string, nInputs int, opts ...Option) (*Graph, error) {
	g, err := Alloc(opts...)
	if err != nil {
		return nil, err
	}
	if err := g.build(desc, nInputs); err != nil {
		g.Free()
		logrus.WithFields(logrus.Fields{
			"function": "Build",
			"inputs":   nInputs,
			"error":    err.Error(),
		}).Error("Failed to build filter graph")
		return nil, err
	}
	return g, nil
}

func (g *Graph) build(desc string, nInputs int) error {
	if err := g.Parse(desc); err != nil {
		return err
	}
	if err := g.Config(); err != nil {
		return err
	}
	if len(g.sources) != nInputs || len(g.sinks) != 1 {
		return fmt.Errorf("%w: %d sources and %d sinks, want %d sources and 1 sink",
			ErrEndpointMismatch, len(g.sources), len(g.sinks), nInputs)
	}
	return nil
}
