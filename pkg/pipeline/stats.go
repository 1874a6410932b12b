package pipeline

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/geom"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// Stats summarises a pipeline run.
type Stats struct {
	Nodes       int
	Edges       int
	Leaves      int
	Reticulate  int // nodes with more than one parent
	ParseTime   time.Duration
	LayoutTime  time.Duration
	Reticulates EdgeLengths // drawn lengths of combining and transfer edges
}

// EdgeLengths summarises the euclidean lengths of a set of edges in
// document coordinates. All fields are zero when Count is zero.
type EdgeLengths struct {
	Count  int
	Total  float64
	Mean   float64
	Median float64
	Max    float64
}

// Summarize computes node counts and reticulate edge lengths of doc.
func Summarize(doc *export.Document) Stats {
	st := Stats{Nodes: len(doc.Nodes), Edges: len(doc.Edges)}
	pos := make(map[int]geom.Point, len(doc.Nodes))
	for _, n := range doc.Nodes {
		pos[n.ID] = geom.Pt(n.X, n.Y)
		if n.Leaf {
			st.Leaves++
		}
		if n.Reticulate {
			st.Reticulate++
		}
	}

	var lengths []float64
	for _, e := range doc.Edges {
		if e.Type == phylo.EdgeTree.String() {
			continue
		}
		lengths = append(lengths, geom.Distance(pos[e.Source], pos[e.Target]))
	}
	st.Reticulates = summarizeLengths(lengths)
	return st
}

func summarizeLengths(lengths []float64) EdgeLengths {
	if len(lengths) == 0 {
		return EdgeLengths{}
	}
	// stats only fails on empty input.
	total, _ := stats.Sum(lengths)
	mean, _ := stats.Mean(lengths)
	median, _ := stats.Median(lengths)
	maxLen, _ := stats.Max(lengths)
	return EdgeLengths{
		Count:  len(lengths),
		Total:  total,
		Mean:   mean,
		Median: median,
		Max:    maxLen,
	}
}
