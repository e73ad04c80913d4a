package filtergraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/vcompositor/rawvideo"
)

// options holds the unescaped key/value pairs of one filter.
type options map[string]string

// parseOptions splits raw filter arguments on ':' and resolves positional
// values against the filter's shorthand list. Positional values must come
// before any key=value pair.
func parseOptions(info *filterInfo, args string) (options, error) {
	opts := options{}
	if strings.TrimSpace(args) == "" {
		return opts, nil
	}

	named := false
	for i, token := range splitUnescaped(args, ':') {
		key, value, hasKey := cutUnescaped(token, '=')
		if !hasKey {
			if named {
				return nil, fmt.Errorf("positional value %q after named option", unescape(token))
			}
			if i >= len(info.shorthand) {
				return nil, fmt.Errorf("too many positional values (%d)", i+1)
			}
			opts[info.shorthand[i]] = unescape(token)
			continue
		}

		named = true
		key = strings.TrimSpace(unescape(key))
		if canonical, ok := info.aliases[key]; ok {
			key = canonical
		}
		if !info.accepts(key) {
			return nil, fmt.Errorf("option %q not found", key)
		}
		opts[key] = unescape(value)
	}
	return opts, nil
}

// splitUnescaped splits s on sep, ignoring escaped or quoted separators.
// Tokens keep their escapes.
func splitUnescaped(s string, sep byte) []string {
	var tokens []string
	start, quoted := 0, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '\'':
			quoted = !quoted
		case c == sep && !quoted:
			tokens = append(tokens, s[start:i])
			start = i + 1
		}
	}
	return append(tokens, s[start:])
}

func cutUnescaped(s string, sep byte) (before, after string, found bool) {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '\'':
			quoted = !quoted
		case c == sep && !quoted:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// unescape removes quoting and backslash escapes.
func unescape(s string) string {
	if strings.IndexAny(s, `\'`) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '\'':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (o options) has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o options) int(key string, def int) (int, error) {
	s, ok := o[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("option %s: invalid integer %q", key, s)
	}
	return v, nil
}

func (o options) float(key string, def, lo, hi float64) (float64, error) {
	s, ok := o[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("option %s: invalid number %q", key, s)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("option %s: %g out of range [%g, %g]", key, v, lo, hi)
	}
	return v, nil
}

// size parses "WxH".
func (o options) size(key string) (w, h int, ok bool, err error) {
	s, ok := o[key]
	if !ok {
		return 0, 0, false, nil
	}
	ws, hs, found := strings.Cut(s, "x")
	if found {
		w, err = strconv.Atoi(ws)
		if err == nil {
			h, err = strconv.Atoi(hs)
		}
	}
	if !found || err != nil || w <= 0 || h <= 0 {
		return 0, 0, true, fmt.Errorf("option %s: invalid size %q", key, s)
	}
	return w, h, true, nil
}

// rational parses "num/den" or a plain integer.
func (o options) rational(key string) (r Rational, ok bool, err error) {
	s, ok := o[key]
	if !ok {
		return Rational{}, false, nil
	}
	ns, ds, found := strings.Cut(s, "/")
	r.Den = 1
	r.Num, err = strconv.Atoi(ns)
	if err == nil && found {
		r.Den, err = strconv.Atoi(ds)
	}
	if err != nil || r.Num <= 0 || r.Den <= 0 {
		return Rational{}, true, fmt.Errorf("option %s: invalid rational %q", key, s)
	}
	return r, true, nil
}

func (o options) pixelFormat(key string) (rawvideo.PixelFormat, bool, error) {
	s, ok := o[key]
	if !ok {
		return rawvideo.PixelFormatNone, false, nil
	}
	p, err := rawvideo.ParsePixelFormat(s)
	if err != nil {
		return rawvideo.PixelFormatNone, true, fmt.Errorf("option %s: %w", key, err)
	}
	return p, true, nil
}

// pixelFormats parses a '|' separated format list.
func (o options) pixelFormats(key string) ([]rawvideo.PixelFormat, error) {
	s, ok := o[key]
	if !ok {
		return nil, nil
	}
	var formats []rawvideo.PixelFormat
	for _, name := range strings.Split(s, "|") {
		p, err := rawvideo.ParsePixelFormat(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", key, err)
		}
		formats = append(formats, p)
	}
	return formats, nil
}
