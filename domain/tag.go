// client/domain/tag.go
package domain

import (
	"errors"
	"sort"
	"strings"
)

const MaxTagLen = 24

var (
	ErrDuplicateTag = errors.New("tag already on note")
	ErrInvalidTag   = errors.New("tag may only contain a-z, 0-9, '-', '_' and spaces")
)

func allowedTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == ' ':
		return true
	}
	return false
}

// SanitizeTag drops characters outside [a-zA-Z0-9-_ ], lowercases and cuts
// to MaxTagLen. It is applied to tag input as it is typed.
func SanitizeTag(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if !allowedTagRune(r) {
			continue
		}
		if n == MaxTagLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.ToLower(b.String())
}

func ValidTag(s string) bool {
	return s != "" && SanitizeTag(s) == s
}

// JoinTags builds the comma list used by the tags query parameter.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// DistinctTags is the sorted union of tags across notes.
func DistinctTags(notes []Note) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
