package model

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Project is the root of a WBS. Its ID is a lowercase slug chosen by the user.
type Project struct {
	ID             types.ProjectID `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Currency       string          `json:"currency,omitempty"`
	SlackChannelID string          `json:"slack_channel_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
