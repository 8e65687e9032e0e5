package models

// RawFact is one row from the mapping source, before key construction.
type RawFact struct {
	ParticipantIDA string
	DomainA        string
	ParticipantIDB string
	DomainB        string
}

// MappingFact states that two participant keys denote the same person.
// Facts are unordered: (A, B) and (B, A) are the same fact.
type MappingFact struct {
	A ParticipantKey
	B ParticipantKey
}

// NewMappingFact builds a fact from a raw row.
func NewMappingFact(raw RawFact) (MappingFact, error) {
	a, err := NewParticipantKey(raw.ParticipantIDA, raw.DomainA)
	if err != nil {
		return MappingFact{}, err
	}
	b, err := NewParticipantKey(raw.ParticipantIDB, raw.DomainB)
	if err != nil {
		return MappingFact{}, err
	}
	return MappingFact{A: a, B: b}, nil
}

// IsSelfPair reports whether both sides are the same key.
func (f MappingFact) IsSelfPair() bool {
	return f.A == f.B
}
