package export

import (
	"github.com/google/uuid"

	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/layout"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// =============================================================================
// Document - Serialised Layout
// =============================================================================

// Document is the serialisation format of a computed layout.
type Document struct {
	ID        string  `json:"id" yaml:"id" bson:"id"`
	Layout    string  `json:"layout" yaml:"layout" bson:"layout"`
	Scaling   string  `json:"scaling" yaml:"scaling" bson:"scaling"`
	Averaging string  `json:"averaging" yaml:"averaging" bson:"averaging"`
	Width     float64 `json:"width,omitempty" yaml:"width,omitempty" bson:"width,omitempty"`
	Height    float64 `json:"height,omitempty" yaml:"height,omitempty" bson:"height,omitempty"`
	Bounds    Bounds  `json:"bounds" yaml:"bounds" bson:"bounds"`
	Nodes     []Node  `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges     []Edge  `json:"edges,omitempty" yaml:"edges,omitempty" bson:"edges,omitempty"`
}

// Bounds is the axis-aligned bounding box of all node positions.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y" bson:"max_y"`
}

// Node is a positioned network node.
type Node struct {
	ID          int      `json:"id" yaml:"id" bson:"id"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	X           float64  `json:"x" yaml:"x" bson:"x"`
	Y           float64  `json:"y" yaml:"y" bson:"y"`
	Angle       *float64 `json:"angle,omitempty" yaml:"angle,omitempty" bson:"angle,omitempty"` // radians, polar layouts only
	Leaf        bool     `json:"leaf,omitempty" yaml:"leaf,omitempty" bson:"leaf,omitempty"`
	Reticulate  bool     `json:"reticulate,omitempty" yaml:"reticulate,omitempty" bson:"reticulate,omitempty"`
	LSAChildren []int    `json:"lsa_children,omitempty" yaml:"lsa_children,omitempty" bson:"lsa_children,omitempty"`
}

// Edge is a directed branch between two nodes, referenced by ID.
type Edge struct {
	Source int     `json:"source" yaml:"source" bson:"source"`
	Target int     `json:"target" yaml:"target" bson:"target"`
	Weight float64 `json:"weight" yaml:"weight" bson:"weight"`
	Type   string  `json:"type" yaml:"type" bson:"type"` // "tree", "combining" or "transfer"
}

// Build assembles a document from the maps filled by [layout.Apply].
// Nodes missing from points are placed at the origin.
func Build(net *phylo.Network, opts layout.Options, lsa map[*phylo.Node][]*phylo.Node,
	angles map[*phylo.Node]float64, points map[*phylo.Node]geom.Point) *Document {
	doc := &Document{
		ID:        uuid.New().String(),
		Layout:    opts.Layout.String(),
		Scaling:   opts.Scaling.String(),
		Averaging: opts.Averaging.String(),
	}
	if opts.Layout == layout.Radial {
		doc.Averaging = layout.LeafAverage.String()
	}

	for _, v := range net.Nodes() {
		p := points[v]
		n := Node{
			ID:         v.ID,
			Label:      v.Label,
			X:          p[0],
			Y:          p[1],
			Leaf:       net.IsLeaf(v),
			Reticulate: net.IsReticulate(v),
		}
		if a, ok := angles[v]; ok {
			n.Angle = &a
		}
		for _, c := range lsa[v] {
			n.LSAChildren = append(n.LSAChildren, c.ID)
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	for _, e := range net.Edges() {
		doc.Edges = append(doc.Edges, Edge{
			Source: e.Source.ID,
			Target: e.Target.ID,
			Weight: e.Weight,
			Type:   e.Type.String(),
		})
	}
	doc.updateBounds()
	return doc
}

// Points returns the node positions in node order.
func (d *Document) Points() []geom.Point {
	pts := make([]geom.Point, len(d.Nodes))
	for i, n := range d.Nodes {
		pts[i] = geom.Pt(n.X, n.Y)
	}
	return pts
}

// Fit scales and translates all nodes into a width x height frame with the
// given margin, preserving the aspect ratio. Angles are unaffected.
func (d *Document) Fit(width, height, margin float64) {
	pts := d.Points()
	geom.Fit(pts, width, height, margin)
	for i := range d.Nodes {
		d.Nodes[i].X, d.Nodes[i].Y = pts[i][0], pts[i][1]
	}
	d.Width, d.Height = width, height
	d.updateBounds()
}

// Node returns the node with the given ID.
func (d *Document) Node(id int) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (d *Document) updateBounds() {
	b := geom.Bounds(d.Points())
	d.Bounds = Bounds{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}
