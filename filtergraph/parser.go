package filtergraph

import "strings"

// filterSpec is one parsed filter declaration.
type filterSpec struct {
	name     string
	instance string
	args     string // raw, escapes preserved
	inputs   []string
	outputs  []string
	offset   int
}

// parser is a recursive descent parser for the graph language:
//
//	graph  = chain { ";" chain } [ ";" ]
//	chain  = filter { "," filter }
//	filter = { "[" label "]" } name [ "@" id ] [ "=" args ] { "[" label "]" }
//
// Whitespace is allowed between tokens. Inside args a backslash escapes the
// next byte and single quotes protect the separators "[],;".
type parser struct {
	s   string
	pos int
}

func parseDescription(desc string) ([][]*filterSpec, error) {
	p := &parser{s: desc}
	p.skipSpace()
	if p.eof() {
		return nil, parseErrorf(0, "empty description")
	}

	var chains [][]*filterSpec
	for {
		chain, err := p.parseChain()
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)

		p.skipSpace()
		if p.eof() {
			return chains, nil
		}
		if p.peek() != ';' {
			return nil, parseErrorf(p.pos, "unexpected %q", p.peek())
		}
		p.pos++
		p.skipSpace()
		if p.eof() {
			return chains, nil
		}
	}
}

func (p *parser) parseChain() ([]*filterSpec, error) {
	var chain []*filterSpec
	for {
		f, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		chain = append(chain, f)

		p.skipSpace()
		if p.eof() || p.peek() != ',' {
			return chain, nil
		}
		p.pos++
	}
}

func (p *parser) parseFilter() (*filterSpec, error) {
	p.skipSpace()
	inputs, err := p.parseLabels()
	if err != nil {
		return nil, err
	}

	f := &filterSpec{inputs: inputs, offset: p.pos}
	f.name = p.parseName()
	if f.name == "" {
		if p.eof() {
			return nil, parseErrorf(p.pos, "missing filter after labels")
		}
		return nil, parseErrorf(p.pos, "expected filter name, found %q", p.peek())
	}

	if !p.eof() && p.peek() == '@' {
		p.pos++
		if f.instance = p.parseName(); f.instance == "" {
			return nil, parseErrorf(p.pos, "missing instance name after '@'")
		}
	}

	if !p.eof() && p.peek() == '=' {
		p.pos++
		if f.args, err = p.parseArgs(); err != nil {
			return nil, err
		}
	}

	p.skipSpace()
	if f.outputs, err = p.parseLabels(); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) parseLabels() ([]string, error) {
	var labels []string
	for !p.eof() && p.peek() == '[' {
		start := p.pos
		end := strings.IndexByte(p.s[start+1:], ']')
		if end < 0 {
			return nil, parseErrorf(start, "unbalanced '['")
		}
		label := p.s[start+1 : start+1+end]
		if !validLabel(label) {
			return nil, parseErrorf(start, "invalid link label %q", label)
		}
		labels = append(labels, label)
		p.pos = start + end + 2
		p.skipSpace()
	}
	return labels, nil
}

func (p *parser) parseName() string {
	start := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) parseArgs() (string, error) {
	start := p.pos
	quoted := false
scan:
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\\':
			if p.pos+1 >= len(p.s) {
				return "", parseErrorf(p.pos, "trailing backslash")
			}
			p.pos += 2
			continue
		case c == '\'':
			quoted = !quoted
		case !quoted && strings.IndexByte("[],;", c) >= 0:
			break scan
		}
		p.pos++
	}
	if quoted {
		return "", parseErrorf(start, "unterminated quote")
	}
	return strings.TrimRight(p.s[start:p.pos], " \t\r\n"), nil
}

func (p *parser) skipSpace() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.peek()) >= 0 {
		p.pos++
	}
}

func (p *parser) eof() bool  { return p.pos >= len(p.s) }
func (p *parser) peek() byte { return p.s[p.pos] }

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func validLabel(label string) bool {
	if label == "" {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isNameByte(c) && c != ':' && c != '.' && c != '-' {
			return false
		}
	}
	return true
}
