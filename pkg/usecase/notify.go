package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/service/slack"
	"github.com/secmon-lab/argus/pkg/utils/async"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	slackapi "github.com/slack-go/slack"
)

type messageBuilder func(project *model.Project) ([]slackapi.Block, string)

// notifier posts messages to the Slack channel of a project. Projects without
// a channel, and use cases without a Slack service, are skipped silently.
type notifier struct {
	repo         interfaces.Repository
	slackService slack.Service
}

func (n *notifier) enabled() bool {
	return n != nil && n.slackService != nil
}

// post sends the message in the background
func (n *notifier) post(ctx context.Context, projectID types.ProjectID, build messageBuilder) {
	if !n.enabled() {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return n.send(ctx, projectID, build)
	})
}

// send posts the message and waits for Slack
func (n *notifier) send(ctx context.Context, projectID types.ProjectID, build messageBuilder) error {
	if !n.enabled() {
		return nil
	}

	project, err := n.repo.Project().Get(ctx, projectID)
	if err != nil {
		return goerr.Wrap(err, "failed to get project for notification", goerr.V("project_id", projectID))
	}
	if project.SlackChannelID == "" {
		return nil
	}

	blocks, text := build(project)
	if _, err := n.slackService.PostMessage(ctx, project.SlackChannelID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to post notification", goerr.V("project_id", projectID))
	}

	logging.From(ctx).Info("notification posted",
		"project_id", projectID,
		"channel_id", project.SlackChannelID,
		"text", text,
	)
	return nil
}
