package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) FindByID(id uint) (*model.Plan, error) {
	var p model.Plan
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) ListActive() ([]model.Plan, error) {
	var plans []model.Plan
	err := r.DB.Where("is_active = ?", true).Order("amount").Find(&plans).Error
	return plans, err
}
