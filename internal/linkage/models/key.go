package models

import (
	"strings"

	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
)

// KeySeparator joins a participant id and its domain into one key.
const KeySeparator = "::"

// ParticipantKey identifies one participant record in one domain. It is the
// participant id and domain name joined by KeySeparator.
type ParticipantKey string

// NewParticipantKey builds a key from its parts. Both parts must be non-empty.
func NewParticipantKey(participantID, domain string) (ParticipantKey, error) {
	if participantID == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "participant id is required")
	}
	if domain == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "domain name is required")
	}
	return ParticipantKey(participantID + KeySeparator + domain), nil
}

// ParseParticipantKey splits a key on its last separator.
func ParseParticipantKey(raw string) (ParticipantKey, error) {
	i := strings.LastIndex(raw, KeySeparator)
	if i <= 0 || i+len(KeySeparator) == len(raw) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "participant key must look like <id>::<domain>")
	}
	return ParticipantKey(raw), nil
}

// Parts returns the participant id and domain name.
func (k ParticipantKey) Parts() (participantID, domain string) {
	s := string(k)
	i := strings.LastIndex(s, KeySeparator)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(KeySeparator):]
}

func (k ParticipantKey) String() string {
	return string(k)
}

func (k ParticipantKey) IsZero() bool {
	return k == ""
}
