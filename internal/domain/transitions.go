package domain

import "fmt"

// transitionRule describes one lifecycle action: the statuses it may start
// from and the status it lands on. The resulting status may depend on the
// current one (submit lands on "revised" when resubmitting after feedback).
type transitionRule struct {
	from map[Status]bool
	to   func(current Status) Status
}

func statusSet(statuses ...Status) map[Status]bool {
	set := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

func landOn(s Status) func(Status) Status {
	return func(Status) Status { return s }
}

// transitionTable is the single source of truth for lifecycle transitions.
// Any new action or status requires an explicit entry here, never an ad hoc
// string elsewhere.
var transitionTable = map[Action]transitionRule{
	ActionSubmit: {
		from: statusSet(StatusDraft, StatusRevision),
		to: func(current Status) Status {
			// A resubmission after requested feedback lands on "revised" so
			// reviewers can prioritize it over first-time submissions.
			if current == StatusRevision {
				return StatusRevised
			}
			return StatusSubmitted
		},
	},
	ActionReviewEditor: {
		from: statusSet(StatusSubmitted, StatusReviewEditor, StatusRevision, StatusRevised),
		to:   landOn(StatusReviewEditor),
	},
	ActionRequestRevision: {
		from: statusSet(StatusSubmitted, StatusReviewEditor, StatusRevision, StatusRevised),
		to:   landOn(StatusRevision),
	},
	ActionApprove: {
		from: statusSet(StatusSubmitted, StatusReviewEditor, StatusRevision, StatusRevised),
		to:   landOn(StatusApproved),
	},
	ActionReviewAdmin: {
		from: statusSet(StatusApproved, StatusReviewAdmin),
		to:   landOn(StatusReviewAdmin),
	},
	ActionReject: {
		from: statusSet(StatusApproved, StatusReviewAdmin),
		to:   landOn(StatusRejected),
	},
	ActionPublish: {
		from: statusSet(StatusApproved, StatusReviewAdmin),
		to:   landOn(StatusPublished),
	},
}

// contentUpdateStates lists, per content-only action, the statuses in which
// the article content or meta bag may be touched without a lifecycle change.
var contentUpdateStates = map[Action]map[Status]bool{
	ActionUpdate:          statusSet(StatusDraft, StatusRevision),
	ActionChangeCover:     statusSet(StatusDraft, StatusRevision),
	ActionHighlightUpdate: statusSet(StatusSubmitted, StatusReviewEditor, StatusRevision, StatusRevised, StatusApproved),
}

// NextStatus evaluates the transition table for an action against the current
// status. It returns ErrInvalidTransition when the action is not allowed from
// the current status.
func NextStatus(action Action, current Status) (Status, error) {
	rule, ok := transitionTable[action]
	if !ok {
		return "", fmt.Errorf("action %q does not change lifecycle state: %w", action, ErrInvalidTransition)
	}
	if !rule.from[current] {
		return "", fmt.Errorf("action %q not allowed from status %q: %w", action, current, ErrInvalidTransition)
	}
	return rule.to(current), nil
}

// ContentUpdateAllowed reports whether a content-only action may run while
// the article is in the given status.
func ContentUpdateAllowed(action Action, current Status) bool {
	return contentUpdateStates[action][current]
}

// CanDelete reports whether an article in the given status may be deleted.
// Only drafts are deletable; everything else already has review history.
func CanDelete(current Status) bool {
	return current == StatusDraft
}
