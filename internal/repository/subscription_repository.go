package repository

import (
	"time"

	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

// FindActiveCovering looks up an active, unexpired subscription whose scope
// covers the category.
func (r *SubscriptionRepository) FindActiveCovering(userID, categoryID uint, now time.Time) (*model.Subscription, error) {
	var subs []model.Subscription
	err := r.DB.Where("user_id = ? AND is_active = ? AND end_date > ?", userID, true, now).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].Covers(categoryID, now) {
			return &subs[i], nil
		}
	}
	return nil, nil
}

func (r *SubscriptionRepository) ListByUser(userID uint) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.DB.Where("user_id = ?", userID).Order("end_date DESC").Find(&subs).Error
	return subs, err
}
