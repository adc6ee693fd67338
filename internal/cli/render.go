package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/internal/app"
	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/hxtool/hxplay/pkg/audio/output"
	"github.com/hxtool/hxplay/pkg/audio/wavimport"
)

// renderChunk is the callback size used when the session sets none
const renderChunk = 4096

// NewRenderCommand creates the render command
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out    string
		cycles int
	)

	cmd := &cobra.Command{
		Use:   "render <store> <entry> -o <out.wav>",
		Short: "Mix an event offline into a WAV file",
		Long: `Drive the playback engine without an audio device and write the mixed
16-bit output to a WAV file. --cycles plays the queue that many times.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("missing --output")
			}
			if cycles < 1 {
				return fmt.Errorf("--cycles must be at least 1: %d", cycles)
			}

			dev := output.NewManual()
			session, err := rootOpts.openSession(args[0], dev)
			if err != nil {
				return err
			}
			defer session.Close()

			stream, err := render(cmd, session, dev, args[1], cycles)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := wavimport.WriteWAV(f, stream); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s: %d bytes, %s (%s)\n", out, len(stream.Data), stream.Duration(), stream.Format)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output WAV file")
	cmd.Flags().IntVarP(&cycles, "cycles", "n", 1, "number of passes over the queue")
	return cmd
}

// render pulls the engine through a manual device until the queue drains
// or the requested number of passes completed
func render(cmd *cobra.Command, session *app.Session, dev *output.Manual, ref string, cycles int) (*audio.Stream, error) {
	player := session.Player()
	player.SetRepeat(cycles > 1)

	if err := session.Play(cmd.Context(), ref); err != nil {
		return nil, err
	}
	if dev.Opens() == 0 {
		return nil, fmt.Errorf("%s: nothing to render", ref)
	}

	spec := dev.Spec()
	chunk := spec.BufferFrames * spec.BytesPerFrame()
	if chunk <= 0 {
		chunk = renderChunk
	}

	var data []byte
	for {
		buf, n := dev.Tick(chunk)
		if n == 0 {
			break
		}
		data = append(data, buf[:n]...)
		if cycles > 1 && player.Snapshot().Cycles >= cycles {
			break
		}
	}
	if err := player.Stop(); err != nil {
		return nil, err
	}

	return &audio.Stream{
		Format: audio.Canonical(spec.SampleRate, spec.Channels),
		Data:   data,
	}, nil
}
