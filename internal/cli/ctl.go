package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/internal/remote"
)

// NewCtlCommand creates the remote control client command
func NewCtlCommand(rootOpts *RootOptions) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "ctl <ws-url> <play|stop|pause|resume|repeat|volume|status> [arg]",
		Short: "Send a command to a running remote",
		Long: `Connect to a remote started with serve (for example ws://host:8928/hxplay),
send one command and print the status and log entries received for --wait.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := remote.Dial(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			if err := sendCommand(c, args[1], args[2:]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			deadline := time.After(wait)
			for {
				select {
				case s := <-c.Status:
					fmt.Fprintf(out, "status %s %s %s %s\n", s.State, s.EventName, s.Bytes(), s.Position())
				case e := <-c.Logs:
					fmt.Fprintf(out, "%s %s\n", e.Level, e.Message)
				case <-c.Done():
					return nil
				case <-deadline:
					return nil
				}
			}
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", time.Second, "how long to print replies")
	return cmd
}

func sendCommand(c *remote.Client, name string, args []string) error {
	arg := func() (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("%s needs an argument", name)
		}
		return args[0], nil
	}

	switch name {
	case "status":
		return nil
	case "play":
		entry, err := arg()
		if err != nil {
			return err
		}
		return c.Play(entry)
	case "stop":
		return c.Stop()
	case "pause":
		return c.Pause()
	case "resume":
		return c.Resume()
	case "repeat":
		v, err := arg()
		if err != nil {
			return err
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		return c.Repeat(on)
	case "volume":
		v, err := arg()
		if err != nil {
			return err
		}
		vol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		return c.Volume(vol)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}
