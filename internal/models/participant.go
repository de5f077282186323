package models

import "strings"

// ChallengeType identifies the kind of riders competing in a meeting's challenge.
type ChallengeType string

const (
	JockeyChallenge ChallengeType = "jockey"
	DriverChallenge ChallengeType = "driver"
)

// IsValid reports whether the challenge type is one of the recognized tags.
func (t ChallengeType) IsValid() bool {
	return t == JockeyChallenge || t == DriverChallenge
}

// Participant represents a jockey or driver competing in a challenge.
type Participant struct {
	Key         string        `json:"key"`
	DisplayName string        `json:"name"`
	Type        ChallengeType `json:"type"`
}

// ParticipantKey normalizes a raw participant name into the identity key
// used for cross-source matching: trimmed, inner whitespace collapsed,
// uppercased. Bookmakers disagree on casing and padding far more often
// than on spelling.
func ParticipantKey(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// MeetingKey normalizes a meeting name the same way participants are keyed.
func MeetingKey(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// NewParticipant builds a participant from a raw source name.
func NewParticipant(name string, ctype ChallengeType) Participant {
	return Participant{
		Key:         ParticipantKey(name),
		DisplayName: strings.Join(strings.Fields(name), " "),
		Type:        ctype,
	}
}
