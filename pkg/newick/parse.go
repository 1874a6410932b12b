package newick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// DefaultWeight is the branch length assigned to edges without an explicit length.
const DefaultWeight = 1.0

// transferPrefix marks reticulation tags that denote lateral gene transfer.
const transferPrefix = "LGT"

// tnode is one occurrence of a node in the Newick text.
type tnode struct {
	label     string
	tag       string // reticulation tag without '#', empty for ordinary nodes
	children  []*tnode
	length    float64
	hasLength bool
	offset    int
}

// Parse reads a single network from s. The string must contain exactly one
// network terminated by ';'.
func Parse(s string) (*phylo.Network, error) {
	if err := errors.ValidateNewick(s); err != nil {
		return nil, err
	}

	p := &parser{s: s}
	root, err := p.parseSubtree()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, err, "parse newick")
	}
	p.skipSpace()
	if !p.consume(';') {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, p.errorf("expected ';'"), "parse newick")
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, p.errorf("trailing input after ';'"), "parse newick")
	}

	net, err := build(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, err, "build network")
	}
	return net, nil
}

// ParseAll reads every ';'-terminated network in s, in order.
func ParseAll(s string) ([]*phylo.Network, error) {
	var out []*phylo.Network
	for _, part := range splitStatements(s) {
		net, err := Parse(part)
		if err != nil {
			return nil, fmt.Errorf("network %d: %w", len(out)+1, err)
		}
		out = append(out, net)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidNewick, "no network found")
	}
	return out, nil
}

// splitStatements splits s at ';' outside quotes and comments, keeping the
// terminator on each statement.
func splitStatements(s string) []string {
	var out []string
	start := 0
	quoted, comment := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quoted:
			quoted = c != '\''
		case comment:
			comment = c != ']'
		case c == '\'':
			quoted = true
		case c == '[':
			comment = true
		case c == ';':
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	return out
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &errors.SyntaxError{Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *parser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// skipSpace skips whitespace and [comments].
func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch c := p.s[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '[':
			end := strings.IndexByte(p.s[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.s)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *parser) parseSubtree() (*tnode, error) {
	p.skipSpace()
	n := &tnode{offset: p.pos}
	if p.consume('(') {
		for {
			child, err := p.parseSubtree()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			p.skipSpace()
			if p.consume(',') {
				continue
			}
			if p.consume(')') {
				break
			}
			return nil, p.errorf("expected ',' or ')'")
		}
	}

	p.skipSpace()
	label, tag, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	if tag != "" {
		n.tag = tag[1:]
		if n.tag == "" {
			return nil, p.errorf("empty reticulation tag")
		}
	}
	n.label = label

	p.skipSpace()
	if p.consume(':') {
		p.skipSpace()
		length, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		n.length, n.hasLength = length, true
	}
	return n, nil
}

// parseLabel returns the node label and its reticulation tag (with the
// leading '#'), either of which may be empty.
func (p *parser) parseLabel() (label, tag string, err error) {
	if p.consume('\'') {
		var b strings.Builder
		closed := false
		for p.pos < len(p.s) && !closed {
			c := p.s[p.pos]
			p.pos++
			switch {
			case c != '\'':
				b.WriteByte(c)
			case p.consume('\''):
				b.WriteByte('\'')
			default:
				closed = true
			}
		}
		if !closed {
			return "", "", p.errorf("unterminated quoted label")
		}
		suffix := p.parseBare()
		if suffix != "" && suffix[0] != '#' {
			return "", "", p.errorf("unexpected text after quoted label")
		}
		return b.String(), suffix, nil
	}

	bare := p.parseBare()
	if i := strings.LastIndexByte(bare, '#'); i >= 0 {
		return strings.ReplaceAll(bare[:i], "_", " "), bare[i:], nil
	}
	return strings.ReplaceAll(bare, "_", " "), "", nil
}

// parseBare reads an unquoted token up to the next metacharacter.
func (p *parser) parseBare() string {
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune("(),:;[ \t\n\r", rune(p.s[p.pos])) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.s) && strings.ContainsRune("0123456789.eE+-", rune(p.s[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected branch length")
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("invalid branch length %q", p.s[start:p.pos])
	}
	if v < 0 {
		return 0, p.errorf("negative branch length %q", p.s[start:p.pos])
	}
	return v, nil
}

// builder converts the parsed occurrences into a network.
type builder struct {
	net     *phylo.Network
	tagged  map[string]*phylo.Node
	definer map[string]*tnode
}

func build(root *tnode) (*phylo.Network, error) {
	b := &builder{
		net:     phylo.New(),
		tagged:  make(map[string]*phylo.Node),
		definer: make(map[string]*tnode),
	}
	counts := make(map[string]int)
	if err := b.scanTags(root, counts); err != nil {
		return nil, err
	}

	r := b.nodeFor(root)
	b.net.SetRoot(r)
	if err := b.attach(r, root, counts); err != nil {
		return nil, err
	}
	if err := b.net.Validate(); err != nil {
		return nil, err
	}
	return b.net, nil
}

// scanTags records, for each reticulation tag, the occurrence that carries
// its children. Only one occurrence may have children.
func (b *builder) scanTags(n *tnode, counts map[string]int) error {
	if n.tag != "" {
		counts[n.tag]++
		if prev, ok := b.definer[n.tag]; !ok || (len(prev.children) == 0 && len(n.children) > 0) {
			b.definer[n.tag] = n
		} else if len(n.children) > 0 {
			return &errors.SyntaxError{Offset: n.offset, Message: fmt.Sprintf("reticulation #%s defined twice", n.tag)}
		}
	}
	for _, c := range n.children {
		if err := b.scanTags(c, counts); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) nodeFor(n *tnode) *phylo.Node {
	if n.tag == "" {
		return b.net.AddNode(n.label)
	}
	v, ok := b.tagged[n.tag]
	if !ok {
		v = b.net.AddNode(n.label)
		b.tagged[n.tag] = v
	} else if v.Label == "" {
		v.Label = n.label
	}
	return v
}

// attach adds the edges below occurrence n, whose network node is v.
func (b *builder) attach(v *phylo.Node, n *tnode, counts map[string]int) error {
	for _, c := range n.children {
		child := b.nodeFor(c)
		weight := DefaultWeight
		if c.hasLength {
			weight = c.length
		}
		if _, err := b.net.AddEdge(v, child, weight, b.edgeType(c, counts)); err != nil {
			return fmt.Errorf("edge %s -> %s: %w", v, child, err)
		}
		if c.tag == "" || b.definer[c.tag] == c {
			if err := b.attach(child, c, counts); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) edgeType(c *tnode, counts map[string]int) phylo.EdgeType {
	if c.tag == "" || counts[c.tag] < 2 {
		return phylo.EdgeTree
	}
	if strings.HasPrefix(strings.ToUpper(c.tag), transferPrefix) {
		if b.definer[c.tag] == c {
			return phylo.EdgeTree
		}
		return phylo.EdgeTransfer
	}
	return phylo.EdgeCombining
}
