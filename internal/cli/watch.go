package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetingmeter/backend/internal/meeting"
)

// NewWatchCmd joins the meeting and renders the running cost on every
// propagated update until interrupted.
func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var push bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Join a meeting and watch its running cost",
		Long:  "Join the meeting record and print the roster and running cost whenever it changes.\nUse --push for WebSocket delivery instead of polling. Ctrl+C to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			out := cmd.OutOrStdout()

			ctrl, err := newController(deps, cmd, push, func(rec *meeting.Record) {
				renderRecord(out, rec, time.Since(start).Minutes())
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_ = ctrl.Identify(ctx) // degraded identity is fine, keep going
			if err := ctrl.Join(ctx); err != nil {
				return err
			}
			defer ctrl.Leave()

			rec, _ := ctrl.Snapshot()
			renderRecord(out, rec, 0)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case <-ctx.Done():
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "receive updates over WebSocket instead of polling")

	return cmd
}
