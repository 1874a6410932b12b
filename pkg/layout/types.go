package layout

import (
	"fmt"
	"strings"
)

// Layout selects the overall shape of the drawing.
type Layout int

const (
	Rectangular Layout = iota
	Circular
	Radial
	Triangular
)

var layoutNames = []string{"rectangular", "circular", "radial", "triangular"}

func (l Layout) String() string {
	if l >= 0 && int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// IsPolar reports whether node positions are derived from angles.
func (l Layout) IsPolar() bool { return l == Circular || l == Radial }

// ParseLayout parses a case-insensitive layout name.
func ParseLayout(s string) (Layout, error) {
	i, err := parseName(s, layoutNames, "layout")
	return Layout(i), err
}

// Scaling governs how edge weights map to depth.
type Scaling int

const (
	ToScale Scaling = iota
	EarlyBranching
	LateBranching
)

var scalingNames = []string{"to-scale", "early", "late"}

func (s Scaling) String() string {
	if s >= 0 && int(s) < len(scalingNames) {
		return scalingNames[s]
	}
	return fmt.Sprintf("Scaling(%d)", int(s))
}

// ParseScaling parses "to-scale", "early" or "late".
func ParseScaling(s string) (Scaling, error) {
	i, err := parseName(s, scalingNames, "scaling")
	return Scaling(i), err
}

// Averaging selects how an internal node's rank is derived from its subtree.
type Averaging int

const (
	// ChildAverage takes the unweighted mean of the LSA children.
	ChildAverage Averaging = iota
	// LeafAverage takes the mean of all leaves below the node.
	LeafAverage
)

var averagingNames = []string{"child", "leaf"}

func (a Averaging) String() string {
	if a >= 0 && int(a) < len(averagingNames) {
		return averagingNames[a]
	}
	return fmt.Sprintf("Averaging(%d)", int(a))
}

// ParseAveraging parses "child" or "leaf".
func ParseAveraging(s string) (Averaging, error) {
	i, err := parseName(s, averagingNames, "averaging")
	return Averaging(i), err
}

func parseName(s string, names []string, kind string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}
