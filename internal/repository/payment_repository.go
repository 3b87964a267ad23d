package repository

import (
	"errors"
	"time"

	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(p *model.Payment) error {
	return r.DB.Create(p).Error
}

func (r *PaymentRepository) FindByOrderID(orderID string) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.Where("order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkFailed flips a payment to FAILED unless it has already succeeded.
// A capture that arrived first must never be undone by a late failure event.
func (r *PaymentRepository) MarkFailed(orderID string) error {
	return r.DB.Model(&model.Payment{}).
		Where("order_id = ? AND status <> ?", orderID, model.PaymentSuccess).
		Update("status", model.PaymentFailed).Error
}

// ClaimSuccess is the idempotency gate of reconciliation: exactly one caller
// can move the payment to SUCCESS. Returns false when the payment was already
// successful (or missing), letting racing deliveries no-op.
func (r *PaymentRepository) ClaimSuccess(tx *gorm.DB, orderID, transactionID string, paidAt time.Time) (bool, error) {
	res := tx.Model(&model.Payment{}).
		Where("order_id = ? AND status <> ?", orderID, model.PaymentSuccess).
		Updates(map[string]interface{}{
			"status":         model.PaymentSuccess,
			"transaction_id": transactionID,
			"paid_at":        paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
