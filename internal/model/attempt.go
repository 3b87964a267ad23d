package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type AttemptStatus string

const (
	AttemptNotStarted AttemptStatus = "not_started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptExpired    AttemptStatus = "expired"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// TestAttempt is one user's run of one test. The question list is frozen at
// creation; scoring only ever reads this snapshot, never the live catalog.
// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel
	UserID           uint            `gorm:"uniqueIndex:idx_user_test_attempt;type:bigint unsigned;not null" json:"userId"`
	TestID           uint            `gorm:"uniqueIndex:idx_user_test_attempt;type:bigint unsigned;not null" json:"testId"`
	AttemptNumber    int             `gorm:"uniqueIndex:idx_user_test_attempt;not null" json:"attemptNumber"`
	Status           AttemptStatus   `gorm:"type:varchar(20);default:'in_progress';index" json:"status"`
	QuestionIDs      string          `gorm:"type:json" json:"-"` // frozen ordered JSON array of question ids
	QuestionSetSeed  int64           `json:"questionSetSeed"`    // audit/reproducibility of the shuffle
	TotalQuestions   int             `json:"totalQuestions"`
	AttemptedCount   int             `json:"attemptedCount"`
	CorrectCount     int             `json:"correctCount"`
	IncorrectCount   int             `json:"incorrectCount"`
	TotalMarks       decimal.Decimal `gorm:"type:decimal(10,2)" json:"totalMarks"`
	Percentage       decimal.Decimal `gorm:"type:decimal(5,2)" json:"percentage"`
	StartedAt        time.Time       `json:"startedAt"`
	SubmittedAt      *time.Time      `json:"submittedAt,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

func (a *TestAttempt) SetQuestionIDs(ids []uint) {
	b, _ := json.Marshal(ids)
	a.QuestionIDs = string(b)
}

func (a *TestAttempt) GetQuestionIDs() []uint {
	var ids []uint
	_ = json.Unmarshal([]byte(a.QuestionIDs), &ids)
	return ids
}

// AttemptAnswer is the saved answer for one (attempt, question) pair.
// SelectedOption nil means the question was cleared/skipped. Correctness and
// marks are filled during submission, not at save time.
// swagger:model AttemptAnswer
type AttemptAnswer struct {
	BaseModel
	AttemptID        uint            `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned;not null" json:"attemptId"`
	QuestionID       uint            `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned;not null" json:"questionId"`
	SelectedOption   *int            `json:"selectedOption,omitempty"`
	IsCorrect        *bool           `json:"isCorrect,omitempty"`
	MarksObtained    decimal.Decimal `gorm:"type:decimal(10,2)" json:"marksObtained"`
	TimeSpentSeconds int             `json:"timeSpentSeconds"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
