package models

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Instruction is a full-replace write for one participant. A nil Alias
// clears any previously stored alias value.
type Instruction struct {
	Key   ParticipantKey
	Alias *string
}

// HasAlias reports whether the instruction sets a value.
func (i Instruction) HasAlias() bool {
	return i.Alias != nil
}

// Plan is the ordered set of instructions for one run, one per participant
// in the universe.
type Plan struct {
	Instructions []Instruction
	// Orphans counts linked set members that are absent from the universe.
	Orphans int
}

// Len returns the number of instructions.
func (p Plan) Len() int {
	return len(p.Instructions)
}

// AliasedCount returns how many instructions set a value.
func (p Plan) AliasedCount() int {
	n := 0
	for _, in := range p.Instructions {
		if in.HasAlias() {
			n++
		}
	}
	return n
}

// Digest is a hex SHA-256 over the instructions. Equal plans share a digest.
func (p Plan) Digest() string {
	h := sha256.New()
	var lenBuf [8]byte
	writeField := func(s string) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	for _, in := range p.Instructions {
		writeField(string(in.Key))
		if in.Alias == nil {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		writeField(*in.Alias)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ApplyResult reports what an apply changed.
type ApplyResult struct {
	// Updated counts rows whose alias value changed, including clears.
	Updated int `json:"updated"`
	// Unmatched counts instructions whose participant row no longer exists.
	Unmatched int `json:"unmatched"`
}
