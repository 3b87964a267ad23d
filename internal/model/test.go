package model

import "github.com/shopspring/decimal"

// Test is a scheduled assessment. SubjectID nil means a multi-subject mock
// paper assembled from the category's blueprint rows.
// swagger:model Test
type Test struct {
	BaseModel
	CategoryID      uint            `gorm:"uniqueIndex:idx_category_test_number;type:bigint unsigned;not null" json:"categoryId"`
	SubjectID       *uint           `gorm:"index;type:bigint unsigned" json:"subjectId,omitempty"`
	TestNumber      int             `gorm:"uniqueIndex:idx_category_test_number;not null" json:"testNumber"`
	Title           string          `gorm:"size:200" json:"title"`
	TotalQuestions  int             `gorm:"not null" json:"totalQuestions"`
	DurationMinutes int             `gorm:"not null" json:"durationMinutes"`
	PositiveMarks   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"positiveMarks"`
	NegativeMarks   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"negativeMarks"`
	IsPaid          bool            `gorm:"default:false" json:"isPaid"`
	IsActive        bool            `gorm:"default:true" json:"isActive"`
}

func (Test) TableName() string {
	return "tests"
}

// IsMock reports whether the test draws from the category blueprint rather
// than a single subject.
func (t *Test) IsMock() bool {
	return t.SubjectID == nil
}
