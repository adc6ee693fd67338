package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/audio/decode"
	"github.com/hxtool/hxplay/pkg/audio/wavimport"
	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
)

// NewExportCommand creates the export command
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out  string
		wave string
	)

	cmd := &cobra.Command{
		Use:   "export <store> -o <out>",
		Short: "Convert a store or extract one wave file object",
		Long: `Write every entry of a store to --output, converting between the YAML
manifest (.yaml) and SQLite (.db) formats. With --wave the samples of one
wave file object are decoded and written as a 16-bit WAV file instead.`,
		Args: cobra.ExactArgs(1),
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

			if wave != "" {
				return exportWave(cmd, rootOpts, store, filepath.Dir(args[0]), wave, out)
			}

			if err := hx.Save(store, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", store.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&wave, "wave", "w", "", "hex id of a wave file object to extract as WAV")
	return cmd
}

func exportWave(cmd *cobra.Command, rootOpts *RootOptions, store hx.Store, dir, ref, out string) error {
	id, err := hx.ParseID(ref)
	if err != nil {
		return err
	}
	e, ok := store.Entry(id)
	if !ok {
		return fmt.Errorf("entry %s: %w", id, hx.ErrNotFound)
	}

	bank := hx.NewBank(dir, rootOpts.Config.Bank.CacheTTL)
	defer bank.Close()

	s, err := hx.LoadStream(e, bank)
	if err != nil {
		return err
	}
	converted, err := decode.NewConverter(eventlog.New(0)).Convert(s, audio.Canonical(0, 0))
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := wavimport.WriteWAV(f, converted); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%s)\n", id, out, converted.Format)
	return nil
}
