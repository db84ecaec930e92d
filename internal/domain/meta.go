package domain

import "strings"

// Meta bag keys with validated semantics. Everything else in the bag is
// carried through untouched.
const (
	MetaKeyCoverPath  = "cover_path"
	MetaKeyCoverURL   = "cover_url"
	MetaKeyKeywords   = "keywords"
	MetaKeyHighlights = "highlights"
)

// MaxKeywordLength caps each keyword entry, in runes.
const MaxKeywordLength = 64

// AnnotationUpdate carries reviewer- or author-supplied annotations for the
// article meta bag. Nil fields leave the corresponding sub-key untouched.
type AnnotationUpdate struct {
	Keywords   []string `json:"keywords,omitempty"`
	Highlights any      `json:"highlights,omitempty"`
	CoverPath  *string  `json:"cover_path,omitempty"`
	CoverURL   *string  `json:"cover_url,omitempty"`
}

// IsZero reports whether the update carries no annotations at all.
func (u AnnotationUpdate) IsZero() bool {
	return u.Keywords == nil && u.Highlights == nil && u.CoverPath == nil && u.CoverURL == nil
}

// MergeAnnotations produces a new meta bag with the update applied:
//   - keywords are unioned with the existing list, trimmed, truncated to
//     MaxKeywordLength runes and deduplicated case-sensitively
//   - cover_path/cover_url are overwritten only when a new value is supplied
//   - highlights are replaced wholesale when supplied
//
// The input bag is never mutated and lifecycle state is never touched.
// Merging the same update twice yields the same bag as merging it once.
func MergeAnnotations(meta map[string]any, upd AnnotationUpdate) map[string]any {
	merged := make(map[string]any, len(meta)+4)
	for k, v := range meta {
		merged[k] = v
	}

	if upd.Keywords != nil {
		merged[MetaKeyKeywords] = mergeKeywords(keywordList(meta[MetaKeyKeywords]), upd.Keywords)
	}
	if upd.Highlights != nil {
		merged[MetaKeyHighlights] = upd.Highlights
	}
	if upd.CoverPath != nil {
		merged[MetaKeyCoverPath] = *upd.CoverPath
	}
	if upd.CoverURL != nil {
		merged[MetaKeyCoverURL] = *upd.CoverURL
	}

	return merged
}

// mergeKeywords unions existing and proposed keywords, normalizing each
// entry. Order is preserved: existing entries first, new ones appended.
func mergeKeywords(existing, proposed []string) []string {
	seen := make(map[string]bool, len(existing)+len(proposed))
	merged := make([]string, 0, len(existing)+len(proposed))

	for _, kw := range append(append([]string{}, existing...), proposed...) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if runes := []rune(kw); len(runes) > MaxKeywordLength {
			kw = string(runes[:MaxKeywordLength])
		}
		if seen[kw] {
			continue
		}
		seen[kw] = true
		merged = append(merged, kw)
	}

	return merged
}

// keywordList extracts a keyword slice from a meta value. JSONB round-trips
// decode arrays as []any, so both representations are accepted.
func keywordList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		keywords := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				keywords = append(keywords, s)
			}
		}
		return keywords
	default:
		return nil
	}
}
