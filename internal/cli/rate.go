package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRateCmd joins the meeting, submits an hourly rate, and prints the
// resulting roster.
func NewRateCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate <hourly-rate>",
		Short: "Set your hourly rate in a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[0], err)
			}

			ctrl, err := newController(deps, cmd, false, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_ = ctrl.Identify(ctx)
			if err := ctrl.Join(ctx); err != nil {
				return err
			}
			defer ctrl.Leave()

			if err := ctrl.SubmitRate(ctx, rate); err != nil {
				return err
			}

			rec, _ := ctrl.Snapshot()
			ident := ctrl.Identity()
			fmt.Fprintf(cmd.OutOrStdout(), "rate set to %.2f/h for %s\n", rate, ident.UserName)
			renderRecord(cmd.OutOrStdout(), rec, 0)
			return nil
		},
	}
	return cmd
}
