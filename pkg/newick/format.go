package newick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// FormatOptions controls Newick output.
type FormatOptions struct {
	// OmitWeights drops all branch lengths.
	OmitWeights bool
}

// Format writes net in extended Newick format, terminated by ';'.
//
// Reticulate nodes are tagged "#H<k>" (or "#LGT<k>" when any incoming edge is
// a transfer edge) and written in full at the occurrence reached through their
// defining edge: the tree edge for transfers, the first incoming edge otherwise.
func Format(net *phylo.Network, opts FormatOptions) string {
	root := net.Root()
	if root == nil {
		return ";"
	}
	w := &writer{net: net, opts: opts, tags: make(map[*phylo.Node]string)}
	w.assignTags()

	var b strings.Builder
	w.write(&b, root, nil)
	b.WriteByte(';')
	return b.String()
}

type writer struct {
	net  *phylo.Network
	opts FormatOptions
	tags map[*phylo.Node]string
}

func (w *writer) assignTags() {
	hybrids, transfers := 0, 0
	for _, v := range w.net.Nodes() {
		in := w.net.InEdges(v)
		if len(in) < 2 {
			continue
		}
		if isTransferNode(in) {
			transfers++
			w.tags[v] = fmt.Sprintf("#%s%d", transferPrefix, transfers)
		} else {
			hybrids++
			w.tags[v] = fmt.Sprintf("#H%d", hybrids)
		}
	}
}

func isTransferNode(in []*phylo.Edge) bool {
	for _, e := range in {
		if e.Type == phylo.EdgeTransfer {
			return true
		}
	}
	return false
}

// definingEdge returns the in-edge under which a tagged node's subtree is written.
func (w *writer) definingEdge(v *phylo.Node) *phylo.Edge {
	in := w.net.InEdges(v)
	if isTransferNode(in) {
		for _, e := range in {
			if e.Type != phylo.EdgeTransfer {
				return e
			}
		}
	}
	return in[0]
}

func (w *writer) write(b *strings.Builder, v *phylo.Node, via *phylo.Edge) {
	tag, tagged := w.tags[v]
	full := !tagged || via == nil || w.definingEdge(v) == via

	if out := w.net.OutEdges(v); full && len(out) > 0 {
		b.WriteByte('(')
		for i, e := range out {
			if i > 0 {
				b.WriteByte(',')
			}
			w.write(b, e.Target, e)
		}
		b.WriteByte(')')
	}
	b.WriteString(quoteLabel(v.Label))
	if tagged {
		b.WriteString(tag)
	}
	if via != nil && !w.opts.OmitWeights {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(via.Weight, 'g', -1, 64))
	}
}

// quoteLabel quotes labels containing Newick metacharacters and encodes
// spaces as underscores otherwise.
func quoteLabel(label string) string {
	if label == "" {
		return ""
	}
	if strings.ContainsAny(label, "(),:;[]'#_\t\n") {
		return "'" + strings.ReplaceAll(label, "'", "''") + "'"
	}
	return strings.ReplaceAll(label, " ", "_")
}
