package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/pkg/hx"
)

// NewListCommand creates the list command
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list <store>",
		Short: "List the events of a store",
		Long: `List the Event entries of a store in load order with their store index,
content address and name. With --all every entry is listed with its class.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := hx.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()
			return writeList(cmd.OutOrStdout(), store, all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every entry, not only events")
	return cmd
}

func writeList(w io.Writer, store hx.Store, all bool) error {
	for i, e := range hx.Entries(store) {
		if !all && e.Class != hx.ClassEvent {
			continue
		}
		var err error
		if all {
			_, err = fmt.Fprintf(w, "%5d  %s  %-20s %s\n", i, e.ID, e.TypeName(), e.Name())
		} else {
			_, err = fmt.Fprintf(w, "%5d  %s  %s\n", i, e.ID, e.Name())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
