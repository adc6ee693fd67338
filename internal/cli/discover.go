package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/internal/discovery"
)

// NewDiscoverCommand creates the mDNS browse command
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find hxplay remotes on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := discovery.NewManager(discovery.Config{}).Browse(timeout)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No instances found")
				return nil
			}
			for _, inst := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", inst.Name, inst.URL())
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "how long to listen for answers")
	return cmd
}
