package model

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// swagger:model Question
type Question struct {
	BaseModel
	TopicID       uint       `gorm:"index;type:bigint unsigned;not null" json:"topicId"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	OptionA       string     `gorm:"type:text;not null" json:"optionA"`
	OptionB       string     `gorm:"type:text;not null" json:"optionB"`
	OptionC       string     `gorm:"type:text;not null" json:"optionC"`
	OptionD       string     `gorm:"type:text;not null" json:"optionD"`
	CorrectOption int        `gorm:"not null" json:"-"` // 1..4, never serialized to candidates
	Difficulty    Difficulty `gorm:"type:varchar(10);default:'medium'" json:"difficulty"`
	Explanation   string     `gorm:"type:text" json:"explanation,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"isActive"` // soft-deactivated once referenced by attempts
}

func (Question) TableName() string {
	return "questions"
}

// Options returns the four option texts indexed 1..4.
func (q *Question) Options() []string {
	return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}
