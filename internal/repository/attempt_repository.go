package repository

import (
	"errors"

	"testprep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgress returns the user's open attempt for the test, or nil.
func (r *AttemptRepository) FindInProgress(userID, testID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.AttemptInProgress).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MaxAttemptNumber reads within tx so the computed next number is consistent
// with the insert that follows it.
func (r *AttemptRepository) MaxAttemptNumber(tx *gorm.DB, userID, testID uint) (int, error) {
	var max int
	err := tx.Model(&model.TestAttempt{}).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&max).Error
	return max, err
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

// UpsertAnswer writes the answer keyed by (attempt, question); repeated saves
// for the same question are last-write-wins.
func (r *AttemptRepository) UpsertAnswer(ans *model.AttemptAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option", "time_spent_seconds", "updated_at"}),
	}).Create(ans).Error
}

func (r *AttemptRepository) GetAnswers(attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}
