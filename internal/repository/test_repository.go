package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	if err := r.DB.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestRepository) ListActive(categoryID uint) ([]model.Test, error) {
	var tests []model.Test
	q := r.DB.Where("is_active = ?", true)
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Order("category_id, test_number").Find(&tests).Error
	return tests, err
}

// BlueprintForCategory returns the category's subject quota rows for mock
// paper assembly.
func (r *TestRepository) BlueprintForCategory(categoryID uint) ([]model.CategorySubject, error) {
	var rows []model.CategorySubject
	err := r.DB.Where("category_id = ?", categoryID).Order("subject_id").Find(&rows).Error
	return rows, err
}
