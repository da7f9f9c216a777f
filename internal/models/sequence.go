package models

// Sequence is a named counter handed out inside transactions. The row lock
// taken by the increment orders concurrent writers.
type Sequence struct {
	Name  string `gorm:"type:varchar(64);primaryKey"`
	Value int64  `gorm:"not null"`
}

// ComplaintSequence numbers complaints.
const ComplaintSequence = "complaint"

// SequenceRelation is the postgres sequence backing the named counter.
func SequenceRelation(name string) string {
	return name + "_seq"
}
