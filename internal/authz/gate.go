// Package authz implements the authorization gate for the editorial
// pipeline: a static capability table mapping {role, action} to allowed,
// plus the organizational scope predicate and the read-path visibility
// filter. It holds no state beyond the actor facts it is handed.
package authz

import (
	"fmt"

	"editorial-pipeline/internal/domain"
)

// capabilities is the static {role, action} policy. State constraints live
// in the transition table, ownership and rubric scoping in the scope checks
// below; this table only answers "may this role ever invoke this action".
var capabilities = map[domain.Role]map[domain.Action]bool{
	domain.RoleAuthor: {
		domain.ActionSubmit:      true,
		domain.ActionUpdate:      true,
		domain.ActionChangeCover: true,
	},
	domain.RoleEditor: {
		domain.ActionReviewEditor:    true,
		domain.ActionRequestRevision: true,
		domain.ActionApprove:         true,
		domain.ActionHighlightUpdate: true,
	},
	domain.RoleAdmin: {
		domain.ActionReviewAdmin: true,
		domain.ActionReject:      true,
		domain.ActionPublish:     true,
	},
}

// editorVisible and adminVisible are the status subsets each scoped role may
// list and read. Revised articles are resubmissions awaiting the editor, so
// they are part of the editor's queue.
var (
	editorVisible = []domain.Status{
		domain.StatusSubmitted,
		domain.StatusReviewEditor,
		domain.StatusRevision,
		domain.StatusRevised,
		domain.StatusApproved,
	}
	adminVisible = []domain.Status{
		domain.StatusSubmitted,
		domain.StatusApproved,
		domain.StatusReviewAdmin,
	}
)

// Gate resolves whether an actor may invoke an action on an article.
type Gate struct{}

// NewGate creates a new authorization gate.
func NewGate() *Gate {
	return &Gate{}
}

// Allow checks capability and organizational scope for a ledger action. It
// returns domain.ErrForbidden when the actor may not invoke the action on
// this article; the article's lifecycle state is not consulted here.
func (g *Gate) Allow(actor domain.Actor, action domain.Action, article *domain.Article) error {
	if actor.Role == domain.RoleSuperAdmin {
		return nil
	}
	if !capabilities[actor.Role][action] {
		return fmt.Errorf("role %q may not invoke %q: %w", actor.Role, action, domain.ErrForbidden)
	}

	switch actor.Role {
	case domain.RoleAuthor:
		if !actor.Owns(article) {
			return fmt.Errorf("actor %s does not own article %s: %w", actor.ID, article.ID, domain.ErrForbidden)
		}
	case domain.RoleEditor, domain.RoleAdmin:
		if !article.InRubric(actor.Rubric) {
			return fmt.Errorf("article %s is outside rubric %q: %w", article.ID, actor.Rubric, domain.ErrForbidden)
		}
	}

	return nil
}

// AllowCreate checks whether the actor may create a new draft.
func (g *Gate) AllowCreate(actor domain.Actor) error {
	if actor.Role == domain.RoleSuperAdmin || actor.Role == domain.RoleAuthor {
		return nil
	}
	return fmt.Errorf("role %q may not create drafts: %w", actor.Role, domain.ErrForbidden)
}

// AllowDelete checks whether the actor may delete the article. Only the
// owning author (or a super admin) may; the draft-only state rule is
// enforced by the state machine.
func (g *Gate) AllowDelete(actor domain.Actor, article *domain.Article) error {
	if actor.Role == domain.RoleSuperAdmin {
		return nil
	}
	if actor.Role == domain.RoleAuthor && actor.Owns(article) {
		return nil
	}
	return fmt.Errorf("actor %s may not delete article %s: %w", actor.ID, article.ID, domain.ErrForbidden)
}

// Visibility constrains the read path for a role. Nil slices and pointers
// mean "no constraint on that dimension".
type Visibility struct {
	Statuses []domain.Status
	Rubric   *string
	AuthorID *string
}

// VisibilityFor returns the listing constraints for an actor. Unknown roles
// get domain.ErrForbidden, never an empty result.
func (g *Gate) VisibilityFor(actor domain.Actor) (Visibility, error) {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return Visibility{}, nil
	case domain.RoleEditor:
		rubric := actor.Rubric
		return Visibility{Statuses: editorVisible, Rubric: &rubric}, nil
	case domain.RoleAdmin:
		rubric := actor.Rubric
		return Visibility{Statuses: adminVisible, Rubric: &rubric}, nil
	case domain.RoleAuthor:
		authorID := actor.ID
		return Visibility{AuthorID: &authorID}, nil
	default:
		return Visibility{}, fmt.Errorf("role %q has no read access: %w", actor.Role, domain.ErrForbidden)
	}
}

// CanView checks a single article against the actor's visibility. Articles
// outside visibility are reported as domain.ErrNotFound so their existence
// is not leaked.
func (g *Gate) CanView(actor domain.Actor, article *domain.Article) error {
	vis, err := g.VisibilityFor(actor)
	if err != nil {
		return err
	}
	if vis.AuthorID != nil && article.AuthorID != *vis.AuthorID {
		return fmt.Errorf("article %s: %w", article.ID, domain.ErrNotFound)
	}
	if vis.Rubric != nil && !article.InRubric(*vis.Rubric) {
		return fmt.Errorf("article %s: %w", article.ID, domain.ErrNotFound)
	}
	if vis.Statuses != nil && !statusIn(article.Status, vis.Statuses) {
		return fmt.Errorf("article %s: %w", article.ID, domain.ErrNotFound)
	}
	return nil
}

func statusIn(s domain.Status, set []domain.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
