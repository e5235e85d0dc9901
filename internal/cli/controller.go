package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meetingmeter/backend/internal/hostctx"
	"github.com/meetingmeter/backend/internal/meeting"
	"github.com/meetingmeter/backend/internal/session"
)

// newController assembles a session controller from the command's flags: a
// static host context built from --meeting/--user/--name (missing fields are
// synthesized during resolution), the HTTP API client, and the chosen
// propagation backend.
func newController(deps *Dependencies, cmd *cobra.Command, push bool, onUpdate func(rec *meeting.Record)) (*session.Controller, error) {
	server, err := cmd.Flags().GetString("server")
	if err != nil {
		return nil, err
	}
	meetingID, _ := cmd.Flags().GetString("meeting")
	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")

	api := session.NewClient(server)

	var watcher session.Watcher
	if push {
		watcher = session.NewPushWatcher(server, deps.Logger)
	} else {
		watcher = session.NewPollWatcher(api, deps.Config.Client.PollInterval, deps.Logger)
	}
	if onUpdate != nil {
		watcher = teeWatcher{inner: watcher, fn: onUpdate}
	}

	provider := hostctx.Static{Ctx: hostctx.Context{
		MeetingID: meetingID,
		UserID:    userID,
		UserName:  name,
	}}

	ctrl := session.NewController(api, watcher, provider, deps.Logger,
		session.WithHostContextTimeout(deps.Config.Client.HostContextTimeout))
	return ctrl, nil
}

// teeWatcher forwards every delivered record to an extra callback before the
// controller sees it, so commands can render live updates.
type teeWatcher struct {
	inner session.Watcher
	fn    func(rec *meeting.Record)
}

func (w teeWatcher) Watch(ctx context.Context, sess session.Session, onUpdate func(rec *meeting.Record)) {
	w.inner.Watch(ctx, sess, func(rec *meeting.Record) {
		w.fn(rec)
		onUpdate(rec)
	})
}
