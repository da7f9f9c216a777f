package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Category groups complaints and routes them to a department.
//
// SubCategories collects every raw sub-category seen and LearnedSubCategories
// their standardized forms. Both only grow.
type Category struct {
	ID                   string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name                 string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	AssignedDepartment   string    `gorm:"type:varchar(64);not null" json:"assignedDepartment"`
	SubCategories        StringSet `gorm:"not null" json:"subCategories"`
	LearnedSubCategories StringSet `gorm:"not null" json:"learnedSubCategories"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&c.ID)
	return
}

// Learn records a raw sub-category and its standardized form. It reports
// whether either vocabulary grew.
func (c *Category) Learn(raw, standardized string) bool {
	addedRaw := c.SubCategories.Add(raw)
	addedStd := c.LearnedSubCategories.Add(standardized)
	return addedRaw || addedStd
}

// StringSet is an insertion-ordered set of strings. On postgres it maps to
// text[]; other dialects store the same array literal as text.
type StringSet []string

// Add appends v unless it is blank or already present.
func (s *StringSet) Add(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || s.Contains(v) {
		return false
	}
	*s = append(*s, v)
	return true
}

func (s StringSet) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return pq.StringArray(s).Value()
}

func (s *StringSet) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*s = StringSet(arr)
	return nil
}

func (StringSet) GormDataType() string {
	return "stringset"
}

func (StringSet) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "text[]"
	case "sqlserver":
		return "nvarchar(max)"
	default:
		return "text"
	}
}
