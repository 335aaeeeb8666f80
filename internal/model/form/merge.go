package form

import "strings"

// Merge rules for chat-driven note taking. The note taker proposes a filled
// document; these helpers fold the proposal into the stored one without ever
// erasing a value the user already confirmed.

func empty(v string) bool { return strings.TrimSpace(v) == "" }

// FillFirstEmpty copies the first schema-ordered field that is empty in dst
// and filled in src. Returns the path that was filled, or "" when nothing
// changed. Used when the conversation is driven one question at a time.
func FillFirstEmpty(dst, src *Document) string {
	for _, f := range Schema {
		if empty(f.Get(dst)) && !empty(f.Get(src)) {
			f.Set(dst, f.Get(src))
			return f.Path
		}
	}
	return ""
}

// FillAllEmpty copies every field that is empty in dst and filled in src.
// Returns the paths that were filled.
func FillAllEmpty(dst, src *Document) []string {
	var filled []string
	for _, f := range Schema {
		if empty(f.Get(dst)) && !empty(f.Get(src)) {
			f.Set(dst, f.Get(src))
			filled = append(filled, f.Path)
		}
	}
	return filled
}

// MergeUpdated overwrites fields where both sides are filled but disagree,
// taking the src value. Empty values on either side are preserved so a
// partial proposal cannot wipe existing answers.
func MergeUpdated(dst, src *Document) []string {
	var changed []string
	for _, f := range Schema {
		dv, sv := f.Get(dst), f.Get(src)
		if !empty(dv) && !empty(sv) && dv != sv {
			f.Set(dst, sv)
			changed = append(changed, f.Path)
		}
	}
	return changed
}
