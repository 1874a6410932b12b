package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/phylolayout/pkg/errors"
	"github.com/matzehuels/phylolayout/pkg/newick"
	"github.com/matzehuels/phylolayout/pkg/phylo"
)

// lsaCommand creates the lsa debug command, which prints the LSA tree that
// every layout is derived from.
func (c *CLI) lsaCommand() *cobra.Command {
	var (
		flags layoutFlags
		node  string
	)

	cmd := &cobra.Command{
		Use:   "lsa [newick|file|-]",
		Short: "Print the LSA tree of a network",
		Long: `Print the LSA tree of a network.

Every node hangs below its lowest stable ancestor, the deepest node that all
root paths to it pass through. For trees this is the tree itself. Reticulate
nodes are marked with *. With --optimize the children are shown in the order
that shortens reticulate edges.

Input may hold several networks; each is printed in turn. With --node only
the subtree below the node with that label is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			input, err := readInput(firstArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer runner.Close()

			nets, err := newick.ParseAll(input)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, net := range nets {
				start := net.Root()
				if node != "" {
					v, ok := net.NodeByLabel(node)
					if !ok {
						return errors.New(errors.ErrCodeInvalidInput, "network %d has no node %q", i+1, node)
					}
					start = v
				}
				maps, err := runner.Layout(cmd.Context(), net, opts)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(w)
				}
				writeLSATree(w, net, start, maps.LSA)
			}
			return nil
		},
	}

	flags.registerOptimize(cmd)
	cmd.Flags().StringVar(&node, "node", "", "print only the subtree below this node label")
	return cmd
}

// writeLSATree prints lsa as an indented tree starting at start.
func writeLSATree(w io.Writer, net *phylo.Network, start *phylo.Node, lsa map[*phylo.Node][]*phylo.Node) {
	var walk func(v *phylo.Node, prefix string, last, top bool)
	walk = func(v *phylo.Node, prefix string, last, top bool) {
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		if top {
			branch, indent = "", ""
		}
		fmt.Fprintln(w, StyleDim.Render(prefix+branch)+nodeName(net, v))

		kids := lsa[v]
		for i, k := range kids {
			walk(k, prefix+indent, i == len(kids)-1, false)
		}
	}
	walk(start, "", true, true)
}

func nodeName(net *phylo.Network, v *phylo.Node) string {
	name := v.Label
	if name == "" {
		name = StyleDim.Render(fmt.Sprintf("#%d", v.ID))
	}
	if net.IsReticulate(v) {
		return StyleReticulate.Render(name + "*")
	}
	return name
}
