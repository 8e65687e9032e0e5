package models

// Statistic names written by the statistics refresh.
const (
	StatMappedParticipantCount = "mapped_participant_count"
	StatUniqueParticipantCount = "unique_participant_count"
)

// Statistic is one row of the statistic table. Domain rows hold the
// participant count per domain.
type Statistic struct {
	Name     string `json:"counts_name"`
	Count    int64  `json:"counts"`
	IsDomain bool   `json:"is_domain"`
}
