package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.DB.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ConsumeFreeCredit increments free_tests_used by one, but only while the
// counter is still below limit. The guarded UPDATE is the compare-and-swap
// that keeps two concurrent starts from burning the same credit; callers pass
// the transaction the attempt row is created in.
func (r *UserRepository) ConsumeFreeCredit(tx *gorm.DB, userID uint, limit int) (bool, error) {
	res := tx.Model(&model.User{}).
		Where("id = ? AND free_tests_used < ?", userID, limit).
		UpdateColumn("free_tests_used", gorm.Expr("free_tests_used + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
