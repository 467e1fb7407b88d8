package models

import "time"

// SequenceCounter stores the last issued value for named monotonic counters.
// One row per logical sequence; last_value starts at 0 and only moves forward
// during normal allocation. Mutated exclusively through
// repository.SequenceCounterRepository under a row-level lock.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

// Well-known sequence names
const (
	SequenceTeam = "team"
)
