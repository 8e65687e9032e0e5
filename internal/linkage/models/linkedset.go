package models

import "strings"

// AliasSeparator joins linked set members into the persisted alias value.
const AliasSeparator = ", "

// LinkedSet is one equivalence class of participant keys. Members are
// distinct and sorted; a materialized set always has at least two members.
type LinkedSet struct {
	Members []ParticipantKey
}

// Alias renders the members as the persisted alias value.
func (s LinkedSet) Alias() string {
	parts := make([]string, len(s.Members))
	for i, m := range s.Members {
		parts[i] = string(m)
	}
	return strings.Join(parts, AliasSeparator)
}

// Contains reports whether key is a member.
func (s LinkedSet) Contains(key ParticipantKey) bool {
	for _, m := range s.Members {
		if m == key {
			return true
		}
	}
	return false
}

// Len returns the member count.
func (s LinkedSet) Len() int {
	return len(s.Members)
}

// ParseAlias splits a persisted alias value back into its member keys.
func ParseAlias(alias string) []ParticipantKey {
	if alias == "" {
		return nil
	}
	parts := strings.Split(alias, AliasSeparator)
	out := make([]ParticipantKey, len(parts))
	for i, p := range parts {
		out[i] = ParticipantKey(p)
	}
	return out
}
