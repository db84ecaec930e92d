package validator

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"editorial-pipeline/internal/domain"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const (
	maxTitleLength   = 200
	maxExcerptLength = 500
	maxNoteLength    = 2000
	maxKeywords      = 20
)

// Validator provides validation methods for pipeline entities.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateArticle validates an article's content fields. It is applied to
// freshly created drafts and to articles after a content update, before they
// are written.
func (v *Validator) ValidateArticle(a *domain.Article) error {
	err := validation.ValidateStruct(a,
		validation.Field(&a.ID,
			validation.Required.Error("id_required"),
			is.UUID.Error("invalid_id_format"),
		),
		validation.Field(&a.Slug,
			validation.Required.Error("slug_required"),
			validation.Match(slugRegex).Error("invalid_slug_format"),
		),
		validation.Field(&a.Title,
			validation.Required.Error("title_required"),
			validation.RuneLength(1, maxTitleLength).Error("title_too_long"),
		),
		validation.Field(&a.Body,
			validation.Required.Error("body_required"),
		),
		validation.Field(&a.AuthorID,
			validation.Required.Error("author_id_required"),
		),
	)
	if err != nil {
		return err
	}

	if a.Excerpt != nil {
		if excerptErr := validation.Validate(*a.Excerpt,
			validation.RuneLength(0, maxExcerptLength).Error("excerpt_too_long")); excerptErr != nil {
			return validation.Errors{"excerpt": fmt.Errorf("%v", excerptErr)}
		}
	}

	if !a.Status.IsValid() {
		return validation.Errors{
			"status": validation.NewError("invalid_status", "status is not a known lifecycle state"),
		}
	}

	// Drafts never carry a publish timestamp; only published articles do.
	if a.Status != domain.StatusPublished && a.PublishedAt != nil {
		return validation.Errors{
			"published_at": validation.NewError("unpublished_has_published_at", "only published articles carry published_at"),
		}
	}
	if a.Status == domain.StatusPublished && a.PublishedAt == nil {
		return validation.Errors{
			"published_at": validation.NewError("published_requires_published_at", "published articles must have published_at"),
		}
	}

	return nil
}

// ValidateAnnotations validates a reviewer/author annotation payload before
// it reaches the merge.
func (v *Validator) ValidateAnnotations(upd domain.AnnotationUpdate) error {
	if len(upd.Keywords) > maxKeywords {
		return validation.Errors{
			"keywords": validation.NewError("too_many_keywords", fmt.Sprintf("at most %d keywords allowed", maxKeywords)),
		}
	}
	for _, kw := range upd.Keywords {
		if err := validation.Validate(kw,
			validation.RuneLength(0, domain.MaxKeywordLength).Error("keyword_too_long")); err != nil {
			return validation.Errors{"keywords": fmt.Errorf("%q: %v", kw, err)}
		}
	}
	return nil
}

// ValidateNote validates a reviewer note (revision reason, rejection reason).
func (v *Validator) ValidateNote(note string) error {
	return validation.Validate(note,
		validation.RuneLength(0, maxNoteLength).Error("note_too_long"))
}

// ValidateActor validates the actor facts handed in from the edge.
func (v *Validator) ValidateActor(actor domain.Actor) error {
	return validation.ValidateStruct(&actor,
		validation.Field(&actor.ID,
			validation.Required.Error("actor_id_required"),
		),
		validation.Field(&actor.Role,
			validation.Required.Error("actor_role_required"),
		),
	)
}
