package geo

import (
	"fmt"
	"strings"
	"unicode"
)

// wktNode is one KEYWORD[...] element. Args hold quoted strings, bare
// tokens (numbers, enum words) and nested nodes in source order.
type wktNode struct {
	Keyword string
	Args    []any
}

func (n *wktNode) children(keywords ...string) []*wktNode {
	var out []*wktNode
	for _, a := range n.Args {
		c, ok := a.(*wktNode)
		if !ok {
			continue
		}
		for _, k := range keywords {
			if c.Keyword == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (n *wktNode) name() string {
	for _, a := range n.Args {
		if s, ok := a.(wktString); ok {
			return string(s)
		}
	}
	return ""
}

// wktString marks a quoted argument.
type wktString string

var (
	projectedKeywords  = map[string]bool{"PROJCS": true, "PROJCRS": true, "PROJECTEDCRS": true}
	geographicKeywords = map[string]bool{
		"GEOGCS": true, "GEOGCRS": true, "GEOGRAPHICCRS": true,
		"GEODCRS": true, "GEODETICCRS": true, "GEOCCS": true,
	}
)

// ParseWKT reads a WKT1 or WKT2 coordinate reference system.
func ParseWKT(src string) (*SpatialRef, error) {
	p := &wktParser{src: src}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return refFromNode(root)
}

func refFromNode(n *wktNode) (*SpatialRef, error) {
	switch {
	case projectedKeywords[n.Keyword]:
		return &SpatialRef{Name: n.name(), Projected: true, LinearUnit: linearUnit(n)}, nil
	case geographicKeywords[n.Keyword]:
		return &SpatialRef{Name: n.name()}, nil
	case n.Keyword == "COMPD_CS" || n.Keyword == "COMPOUNDCRS":
		for _, a := range n.Args {
			if c, ok := a.(*wktNode); ok {
				return refFromNode(c)
			}
		}
	case n.Keyword == "BOUNDCRS":
		for _, src := range n.children("SOURCECRS") {
			for _, a := range src.Args {
				if c, ok := a.(*wktNode); ok {
					return refFromNode(c)
				}
			}
		}
	}
	return nil, fmt.Errorf("unsupported WKT root %q", n.Keyword)
}

// linearUnit finds the unit of a projected CRS. WKT1 puts UNIT directly under
// PROJCS; WKT2 uses LENGTHUNIT under the CRS or inside each AXIS.
func linearUnit(n *wktNode) string {
	if u := n.children("UNIT", "LENGTHUNIT"); len(u) > 0 {
		return u[len(u)-1].name()
	}
	for _, axis := range n.children("AXIS") {
		if u := axis.children("LENGTHUNIT", "UNIT"); len(u) > 0 {
			return u[0].name()
		}
	}
	return ""
}

type wktParser struct {
	src string
	pos int
}

func (p *wktParser) parse() (*wktNode, error) {
	p.skipSpace()
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("wkt: trailing data at offset %d", p.pos)
	}
	return n, nil
}

func (p *wktParser) node() (*wktNode, error) {
	kw := p.word()
	if kw == "" {
		return nil, fmt.Errorf("wkt: expected keyword at offset %d", p.pos)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || (p.src[p.pos] != '[' && p.src[p.pos] != '(') {
		return nil, fmt.Errorf("wkt: expected '[' after %s", kw)
	}
	closer := byte(']')
	if p.src[p.pos] == '(' {
		closer = ')'
	}
	p.pos++
	n := &wktNode{Keyword: strings.ToUpper(kw)}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("wkt: unterminated %s", kw)
		}
		switch ch := p.src[p.pos]; {
		case ch == closer:
			p.pos++
			return n, nil
		case ch == ',':
			p.pos++
		case ch == '"':
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, wktString(s))
		default:
			start := p.pos
			tok := p.word()
			if tok == "" {
				return nil, fmt.Errorf("wkt: unexpected %q at offset %d", ch, p.pos)
			}
			p.skipSpace()
			if p.pos < len(p.src) && (p.src[p.pos] == '[' || p.src[p.pos] == '(') {
				p.pos = start
				child, err := p.node()
				if err != nil {
					return nil, err
				}
				n.Args = append(n.Args, child)
				continue
			}
			n.Args = append(n.Args, tok)
		}
	}
}

func (p *wktParser) word() string {
	start := p.pos
	for p.pos < len(p.src) {
		ch := rune(p.src[p.pos])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || strings.ContainsRune("_.-+", ch) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *wktParser) quoted() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		p.pos++
		if ch != '"' {
			b.WriteByte(ch)
			continue
		}
		// "" is an escaped quote
		if p.pos < len(p.src) && p.src[p.pos] == '"' {
			b.WriteByte('"')
			p.pos++
			continue
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("wkt: unterminated string")
}

func (p *wktParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}
