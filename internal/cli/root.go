// Package cli implements the meter command line client: watch a meeting's
// running cost, set your hourly rate, or fetch a one-shot snapshot.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meetingmeter/backend/config"
)

// Dependencies carries the wiring shared by all subcommands.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRootCmd builds the meter command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meter",
		Short: "Track what a meeting costs while it runs",
		Long:  "meter joins a shared meeting record, lets each participant set an hourly rate, and shows the running cost to everyone watching.",
	}

	rootCmd.PersistentFlags().String("server", deps.Config.Client.ServerURL, "meter server base URL")
	rootCmd.PersistentFlags().String("meeting", "", "meeting id (defaults to the host platform's, or the demo meeting)")
	rootCmd.PersistentFlags().String("user", "", "user id (defaults to a generated anonymous id)")
	rootCmd.PersistentFlags().String("name", "", "display name")

	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewRateCmd(deps))
	rootCmd.AddCommand(NewShowCmd(deps))

	return rootCmd
}
