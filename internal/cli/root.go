// ABOUTME: Root command of the hxplay CLI
// ABOUTME: Loads configuration, sets up logging and tracing, and registers subcommands
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/internal/app"
	"github.com/hxtool/hxplay/internal/config"
	"github.com/hxtool/hxplay/internal/tracing"
	"github.com/hxtool/hxplay/internal/version"
	"github.com/hxtool/hxplay/pkg/audio/output"
	"github.com/hxtool/hxplay/pkg/eventlog"
)

// annotationTUI marks commands that take over the terminal
const annotationTUI = "tui"

// RootOptions holds global flags and the loaded configuration
type RootOptions struct {
	ConfigPath string
	LogFile    string
	Backend    string
	Trace      bool

	Config config.Config

	logCloser io.Closer
	shutdown  tracing.Shutdown
	// quiet routes operational logs to the log file only
	quiet bool
}

// NewRootCommand creates the root command for the hxplay CLI
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "hxplay",
		Short:   "Browse and audition game audio resource stores",
		Long:    "hxplay lists the events of a resource store, prints their link trees,\nplays them through an audio device and edits their waveforms.",
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.teardown(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/hxplay/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "append operational logs to this file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "audio output backend (oto|malgo|portaudio|null)")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "write OpenTelemetry spans to stderr")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewBrowseCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewDiscoverCommand(opts))
	cmd.AddCommand(NewCtlCommand(opts))

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.Backend != "" {
		cfg.Output.Backend = o.Backend
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
	if o.Trace {
		cfg.Trace.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.Config = cfg

	o.quiet = cmd.Annotations[annotationTUI] == "true"
	if err := o.setupLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}

	o.shutdown, err = tracing.Setup(cfg.Trace.Enabled, cmd.ErrOrStderr())
	return err
}

// setupLogging mirrors logs to stderr and the optional log file. TUI
// commands set quiet so logs never draw over the screen.
func (o *RootOptions) setupLogging(stderr io.Writer) error {
	var file io.Writer
	if o.Config.Log.File != "" {
		f, err := os.OpenFile(o.Config.Log.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		o.logCloser = f
		file = f
	}

	switch {
	case o.quiet && file != nil:
		log.SetOutput(file)
	case o.quiet:
		log.SetOutput(io.Discard)
	case file != nil:
		log.SetOutput(io.MultiWriter(stderr, file))
	default:
		log.SetOutput(stderr)
	}
	return nil
}

func (o *RootOptions) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	if o.shutdown != nil {
		err = o.shutdown(ctx)
	}
	if o.logCloser != nil {
		o.logCloser.Close()
		o.logCloser = nil
	}
	return err
}

// openSession opens a store with the configured device unless dev is given
func (o *RootOptions) openSession(path string, dev output.Device) (*app.Session, error) {
	if dev == nil {
		var err error
		dev, err = o.Config.Device()
		if err != nil {
			return nil, err
		}
	}
	return app.Open(path, o.Config, dev, eventlog.New(o.Config.Log.MaxEntries))
}
