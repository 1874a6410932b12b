package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/phylolayout/pkg/export"
	"github.com/matzehuels/phylolayout/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "layout [newick|file|-]",
		Short: "Compute node coordinates for a tree or network",
		Long: `Compute node coordinates for a rooted tree or network.

The input is an extended Newick statement, given literally, as a file, or on
stdin. Hybrid nodes are tagged #H<n> and horizontal transfers #LGT<n>.

The output is a layout document (JSON, YAML or BSON) listing every node with
its position, its LSA children and every edge with its type. Results are
cached locally for faster subsequent runs.`,
		Example: `  phylolayout layout "((a,b),(c,d));"
  phylolayout layout tree.nwk -l circular -s early -o tree.layout.yaml
  cat net.nwk | phylolayout layout --optimize --timeout 2s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			f, err := outputFormat(format, output, cfg.Format)
			if err != nil {
				return err
			}
			input, err := readInput(firstArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			return c.runLayout(cmd, input, opts, !cfg.Cache, output, f)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml, bson (default: from output extension or config)")

	return cmd
}

// runLayout computes the layout and writes the document.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, noCache bool, output string, format export.Format) error {
	ctx := cmd.Context()
	res, err := c.execute(ctx, input, opts, noCache, output != "")
	if err != nil {
		return err
	}

	data, err := export.Marshal(res.Document, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output == "" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats, res.CacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// execute runs the pipeline, with a spinner when stdout is free for it.
func (c *CLI) execute(ctx context.Context, input string, opts pipeline.Options, noCache, spin bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var spinner *Spinner
	if spin {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Layout))
		spinner.Start()
	}

	res, err := runner.Execute(ctx, input, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Layout failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	prog.done("laid out network", "nodes", res.Stats.Nodes, "reticulations", res.Stats.Reticulate, "cached", res.CacheHit)
	return res, nil
}

// outputFormat picks the export format from the flag, the output file
// extension, or the configured default, in that order.
func outputFormat(flag, output, fallback string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if f, err := export.ParseFormat(filepath.Ext(output)); err == nil {
		return f, nil
	}
	return export.ParseFormat(fallback)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
