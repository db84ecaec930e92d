package domain

import "time"

// Action is the closed vocabulary of ledger actions.
type Action string

const (
	ActionSubmit          Action = "submit"
	ActionReviewEditor    Action = "review_editor"
	ActionRequestRevision Action = "request_revision"
	ActionApprove         Action = "approve"
	ActionReviewAdmin     Action = "review_admin"
	ActionReject          Action = "reject"
	ActionPublish         Action = "publish"
	ActionUpdate          Action = "update"
	ActionChangeCover     Action = "change_cover"
	ActionHighlightUpdate Action = "highlight_update"
	ActionRevised         Action = "revised"
)

// ValidActions contains the full ledger action vocabulary. ActionRevised is
// never produced by the current transition table but remains part of the
// persisted vocabulary for historical rows.
var ValidActions = []Action{
	ActionSubmit,
	ActionReviewEditor,
	ActionRequestRevision,
	ActionApprove,
	ActionReviewAdmin,
	ActionReject,
	ActionPublish,
	ActionUpdate,
	ActionChangeCover,
	ActionHighlightUpdate,
	ActionRevised,
}

// IsValid checks if an action is part of the ledger vocabulary.
func (a Action) IsValid() bool {
	for _, v := range ValidActions {
		if v == a {
			return true
		}
	}
	return false
}

// ReviewEntry is one immutable row of the review audit ledger.
// FromStatus and ToStatus are equal for content-only actions that do not
// change lifecycle state.
type ReviewEntry struct {
	ID         string    `json:"id"`
	ArticleID  string    `json:"article_id"`
	ActorID    string    `json:"actor_id"`
	Action     Action    `json:"action"`
	FromStatus *Status   `json:"from_status,omitempty"`
	ToStatus   *Status   `json:"to_status,omitempty"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
