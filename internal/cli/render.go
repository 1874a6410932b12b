package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/pipeline"
	"github.com/matzehuels/phylolayout/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string
	format string
	draw   nodelink.Options
}

// renderCommand creates the render command for drawing a layout.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags layoutFlags
		opts  = renderOpts{draw: nodelink.Options{Scale: nodelink.DefaultScale}}
	)

	cmd := &cobra.Command{
		Use:   "render [newick|file|-]",
		Short: "Draw a tree or network as DOT, SVG or PNG",
		Long: `Draw a tree or network with Graphviz, keeping every node at its computed
position.

The input is either Newick (literal, file or stdin), which is laid out first,
or a layout document written by 'layout' (.json, .yaml or .bson), which is
drawn as is.`,
		Example: `  phylolayout render "((a,b),(c,d));" -o tree.svg
  phylolayout render tree.layout.json -f dot
  phylolayout render net.nwk -l radial --optimize -o net.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, firstArg(args), &flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png (default: from output extension, else svg)")
	cmd.Flags().Float64Var(&opts.draw.Scale, "scale", opts.draw.Scale, "points per layout unit")
	cmd.Flags().BoolVar(&opts.draw.Straight, "straight", false, "draw rectangular edges as straight lines")
	cmd.Flags().BoolVar(&opts.draw.InternalLabels, "internal-labels", false, "label internal nodes")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, arg string, flags *layoutFlags, opts renderOpts) error {
	ctx := cmd.Context()
	format, err := renderFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	popts, cfg, err := c.options(cmd, flags)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(!cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		doc    *export.Document
		stats  pipeline.Stats
		cached bool
	)
	if isDocumentPath(arg) {
		if doc, err = export.ReadFile(arg); err != nil {
			return err
		}
		stats = pipeline.Summarize(doc)
	} else {
		input, err := readInput(arg, cmd.InOrStdin())
		if err != nil {
			return err
		}
		res, err := c.execute(ctx, input, popts, !cfg.Cache, opts.output != "")
		if err != nil {
			return err
		}
		doc, stats, cached = res.Document, res.Stats, res.CacheHit
	}

	prog := newProgress(c.Logger)
	data, err := runner.Render(ctx, doc, format, opts.draw)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	prog.done("rendered network", "format", format, "bytes", len(data))

	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	if opts.output != "" {
		printSuccess("Rendered %s", doc.Layout)
		printFile(opts.output)
		printStats(stats, cached)
	}
	return nil
}

// renderFormat picks the image format from the flag or the output file
// extension, defaulting to SVG.
func renderFormat(flag, output string) (nodelink.Format, error) {
	if flag != "" {
		return nodelink.ParseFormat(flag)
	}
	if f, err := nodelink.ParseFormat(filepath.Ext(output)); err == nil {
		return f, nil
	}
	return nodelink.FormatSVG, nil
}

// isDocumentPath reports whether arg names a layout document rather than
// Newick input.
func isDocumentPath(arg string) bool {
	if arg == "" || isNewick(arg) {
		return false
	}
	_, err := export.ParseFormat(filepath.Ext(arg))
	return err == nil
}
