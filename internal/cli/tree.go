package cli

import (
	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/resolve"
)

// NewTreeCommand creates the tree command
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree <store> <entry>",
		Short: "Print the link tree of an entry",
		Long: `Print every entry reachable from an event name or hex id, one per line
with its language column and class. Missing link targets print as <missing>.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := hx.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := resolve.Find(store, args[1])
			if err != nil {
				return err
			}
			if depth <= 0 {
				depth = rootOpts.Config.Resolve.MaxDepth
			}
			return resolve.BuildTree(store, e.ID, depth).Print(cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum link depth (default resolve.max_depth)")
	return cmd
}
