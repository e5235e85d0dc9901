package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetingmeter/backend/internal/meeting"
	"github.com/meetingmeter/backend/internal/session"
)

// NewShowCmd fetches a meeting record once, without joining.
func NewShowCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Print a meeting's roster and cost without joining",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := cmd.Flags().GetString("server")
			if err != nil {
				return err
			}
			api := session.NewClient(server)
			rec, err := api.GetMeeting(cmd.Context(), args[0])
			if errors.Is(err, meeting.ErrNotFound) {
				return fmt.Errorf("meeting %s not found (or expired)", args[0])
			}
			if err != nil {
				return err
			}
			var minutes float64
			if rec != nil {
				minutes = float64(rec.ScheduledMinutes)
			}
			renderRecord(cmd.OutOrStdout(), rec, minutes)
			return nil
		},
	}
	return cmd
}
