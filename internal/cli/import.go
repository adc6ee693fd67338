package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/pkg/audio/wavimport"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
)

// NewImportCommand creates the import command
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "import <store> <wavefile-id> <file.wav|file.flac> -o <out>",
		Short: "Replace the samples of a wave file object",
		Long: `Replace the samples of a PCM wave file object with a 16-bit WAV or FLAC
file and write the modified store to a new file. The output format follows
the extension of --output (.yaml or .db).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("missing --output")
			}
			if filepath.Clean(out) == filepath.Clean(args[0]) {
				return errors.New("refusing to overwrite the source store")
			}

			store, err := hx.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := hx.ParseID(args[1])
			if err != nil {
				return err
			}
			e, ok := store.Entry(id)
			if !ok {
				return fmt.Errorf("entry %s: %w", id, hx.ErrNotFound)
			}

			s, err := wavimport.Load(args[2])
			if err != nil {
				return err
			}

			events := eventlog.New(0)
			replaced, err := wavimport.Inject(e, s, filepath.Base(args[2]), events)
			if err != nil {
				events.Errorf("Failed to import %s: %v", args[2], err)
				return err
			}

			updated, err := hx.Replace(store, replaced)
			if err != nil {
				return err
			}
			if err := hx.Save(updated, out); err != nil {
				return err
			}

			wf, _ := replaced.WaveFile()
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced %s with %s (%s) in %s\n", id, filepath.Base(args[2]), wf.Format, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output store file")
	return cmd
}
