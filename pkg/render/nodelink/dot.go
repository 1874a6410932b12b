package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// DefaultScale is the number of points per layout unit.
const DefaultScale = 36.0

// Options configures node-link diagram generation.
type Options struct {
	// Scale converts layout units to points. Zero uses DefaultScale.
	Scale float64

	// Straight disables elbow edges in rectangular layouts.
	Straight bool

	// InternalLabels shows labels of internal nodes. Leaf labels are always shown.
	InternalLabels bool
}

// ToDOT converts a layout document to Graphviz DOT with pinned node positions.
// The y axis is flipped so that the first leaf is drawn at the top.
func ToDOT(doc *export.Document, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	elbows := doc.Layout == "rectangular" && !opts.Straight

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=point, width=0.06, fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none, penwidth=1.5];\n")
	buf.WriteString("\n")

	pos := make(map[int][2]float64, len(doc.Nodes))
	for _, n := range doc.Nodes {
		x, y := n.X*scale, 0-n.Y*scale // 0-y keeps y=0 from printing as -0
		pos[n.ID] = [2]float64{x, y}
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(n.ID), strings.Join(fmtAttrs(n, x, y, opts), ", "))
	}

	buf.WriteString("\n")
	for i, e := range doc.Edges {
		style := edgeStyle(e.Type)
		if elbows && e.Type == phylo.EdgeTree.String() {
			src, tgt := pos[e.Source], pos[e.Target]
			corner := fmt.Sprintf("\"c%d\"", i)
			fmt.Fprintf(&buf, "  %s [style=invis, width=0, pos=%q];\n", corner, fmtPos(src[0], tgt[1]))
			fmt.Fprintf(&buf, "  %s -> %s%s;\n", nodeID(e.Source), corner, style)
			fmt.Fprintf(&buf, "  %s -> %s%s;\n", corner, nodeID(e.Target), style)
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s%s;\n", nodeID(e.Source), nodeID(e.Target), style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string { return fmt.Sprintf("\"n%d\"", id) }

func fmtPos(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64) + "," + strconv.FormatFloat(y, 'f', 2, 64) + "!"
}

func fmtAttrs(n export.Node, x, y float64, opts Options) []string {
	attrs := []string{fmt.Sprintf("pos=%q", fmtPos(x, y))}
	if n.Label != "" && (n.Leaf || opts.InternalLabels) {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.Label))
	}
	if n.Reticulate {
		attrs = append(attrs, "color=steelblue")
	}
	return attrs
}

func edgeStyle(typ string) string {
	switch typ {
	case phylo.EdgeCombining.String():
		return " [color=steelblue]"
	case phylo.EdgeTransfer.String():
		return " [style=dashed, color=darkorange, arrowhead=normal]"
	default:
		return ""
	}
}

// Format is an output image format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat parses "dot", "svg" or "png".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown render format %q", s)
	}
}

// Render renders DOT source with the neato engine. FormatDOT returns the
// source unchanged.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown render format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, FormatSVG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([-0-9.]+)\s+([-0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
