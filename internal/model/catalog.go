package model

// swagger:model Category
type Category struct {
	BaseModel
	Name     string `gorm:"size:100;unique;not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Category) TableName() string {
	return "categories"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	Name     string `gorm:"size:100;unique;not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Subject) TableName() string {
	return "subjects"
}

// swagger:model Topic
type Topic struct {
	BaseModel
	SubjectID uint   `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	Name      string `gorm:"size:150;not null" json:"name"`
	IsActive  bool   `gorm:"default:true" json:"isActive"`
}

func (Topic) TableName() string {
	return "topics"
}

// CategorySubject is the blueprint row for multi-subject mock tests: how many
// questions of a subject go into a mock paper of this category.
// swagger:model CategorySubject
type CategorySubject struct {
	BaseModel
	CategoryID       uint `gorm:"uniqueIndex:idx_category_subject;type:bigint unsigned;not null" json:"categoryId"`
	SubjectID        uint `gorm:"uniqueIndex:idx_category_subject;type:bigint unsigned;not null" json:"subjectId"`
	QuestionsPerTest int  `gorm:"not null" json:"questionsPerTest"`
}

func (CategorySubject) TableName() string {
	return "category_subjects"
}
