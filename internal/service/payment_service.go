package service

import (
	"encoding/json"
	"errors"
	"time"

	"testprep_backend/internal/config"
	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"
	"testprep_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileOutcome reports what a reconciliation call did.
type ReconcileOutcome string

const (
	OutcomeActivated   ReconcileOutcome = "activated"
	OutcomeAlreadyDone ReconcileOutcome = "already_done"
)

type PaymentService struct {
	DB          *gorm.DB
	PaymentRepo *repository.PaymentRepository
	PlanRepo    *repository.PlanRepository
	Gateway     OrderCreator
	Razorpay    config.RazorpayConfig
}

func NewPaymentService(db *gorm.DB, paymentRepo *repository.PaymentRepository, planRepo *repository.PlanRepository, gateway OrderCreator, cfg config.RazorpayConfig) *PaymentService {
	return &PaymentService{
		DB:          db,
		PaymentRepo: paymentRepo,
		PlanRepo:    planRepo,
		Gateway:     gateway,
		Razorpay:    cfg,
	}
}

func (s *PaymentService) ListPlans() ([]model.Plan, error) {
	return s.PlanRepo.ListActive()
}

type OrderResponse struct {
	OrderID     string `json:"orderId"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"keyId"`
}

// CreateOrder opens a gateway order for the plan and records a PENDING
// payment. Plan duration and scope are snapshotted onto the payment row so
// reconciliation later activates exactly what was bought.
func (s *PaymentService) CreateOrder(userID, planID uint, categoryID *uint) (*OrderResponse, error) {
	plan, err := s.PlanRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, util.ErrPlanNotFound
	}
	if plan.Scope == model.ScopeSingleCategory && categoryID == nil {
		return nil, util.ValidationFailedErr("category is required for a category-scoped plan")
	}
	if plan.Scope == model.ScopeAllCategories {
		categoryID = nil
	}

	receipt := uuid.New().String()
	orderID, err := s.Gateway.CreateOrder(plan.AmountPaise(), "INR", receipt, map[string]interface{}{
		"user_id": userID,
		"plan_id": planID,
	})
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		UserID:       userID,
		PlanID:       planID,
		CategoryID:   categoryID,
		OrderID:      orderID,
		Amount:       plan.Amount,
		Currency:     "INR",
		Status:       model.PaymentPending,
		Scope:        plan.Scope,
		DurationDays: plan.DurationDays,
	}
	if err := s.PaymentRepo.Create(payment); err != nil {
		return nil, err
	}

	logger.Log.Info("payment order created",
		zap.Uint("userId", userID),
		zap.Uint("planId", planID),
		zap.String("orderId", orderID))

	return &OrderResponse{
		OrderID:     orderID,
		AmountPaise: plan.AmountPaise(),
		Currency:    "INR",
		KeyID:       s.Razorpay.KeyID,
	}, nil
}

// VerifyPayment is the synchronous confirmation path: the client posts back
// the gateway's order id, payment id and signature after checkout. A bad
// signature marks the payment FAILED and never activates anything.
func (s *PaymentService) VerifyPayment(orderID, paymentID, signature string) (ReconcileOutcome, error) {
	payment, err := s.PaymentRepo.FindByOrderID(orderID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", util.ErrPaymentNotFound
	}

	if !VerifyPaymentSignature(orderID, paymentID, signature, s.Razorpay.KeySecret) {
		if err := s.PaymentRepo.MarkFailed(orderID); err != nil {
			logger.Log.Error("failed to mark payment failed", zap.String("orderId", orderID), zap.Error(err))
		}
		return "", util.ErrSignatureMismatch
	}

	return s.Reconcile(orderID, paymentID)
}

// webhookEvent is the subset of the gateway's webhook payload this system
// reads.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook is the asynchronous confirmation path. The signature covers
// the raw body under the webhook secret. Processing failures after a valid
// signature are logged and swallowed so the caller can still acknowledge the
// gateway; the payment row stays PENDING and a retry or the verify path can
// finish the job.
func (s *PaymentService) HandleWebhook(body []byte, signature string) error {
	if !VerifyWebhookSignature(body, signature, s.Razorpay.WebhookSecret) {
		return util.ErrSignatureMismatch
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return util.ValidationFailedErr("malformed webhook payload")
	}

	entity := event.Payload.Payment.Entity
	switch event.Event {
	case "payment.captured":
		outcome, err := s.Reconcile(entity.OrderID, entity.ID)
		if err != nil {
			logger.Log.Error("webhook reconciliation failed",
				zap.String("orderId", entity.OrderID), zap.Error(err))
			return nil
		}
		logger.Log.Info("webhook processed",
			zap.String("orderId", entity.OrderID),
			zap.String("outcome", string(outcome)))
	case "payment.failed":
		if err := s.PaymentRepo.MarkFailed(entity.OrderID); err != nil {
			logger.Log.Error("webhook mark-failed error",
				zap.String("orderId", entity.OrderID), zap.Error(err))
		}
	default:
		logger.Log.Debug("ignoring webhook event", zap.String("event", event.Event))
	}
	return nil
}

// Reconcile turns a confirmed payment into an active subscription, exactly
// once. Both the verify path and the webhook path land here; the status
// re-check happens inside the transaction via the guarded UPDATE, which is
// what closes the race between them.
func (s *PaymentService) Reconcile(orderID, transactionID string) (ReconcileOutcome, error) {
	outcome := OutcomeAlreadyDone

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		claimed, err := s.PaymentRepo.ClaimSuccess(tx, orderID, transactionID, now)
		if err != nil {
			return err
		}
		if !claimed {
			var count int64
			if err := tx.Model(&model.Payment{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return util.ErrPaymentNotFound
			}
			return nil
		}

		var payment model.Payment
		if err := tx.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
			return err
		}

		sub := &model.Subscription{
			UserID:     payment.UserID,
			PaymentID:  payment.ID,
			Scope:      payment.Scope,
			CategoryID: payment.CategoryID,
			StartDate:  now,
			EndDate:    now.AddDate(0, 0, payment.DurationDays),
			IsActive:   true,
		}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}

		outcome = OutcomeActivated
		return nil
	})
	if err != nil {
		monitoring.PaymentsReconciled.WithLabelValues("failed").Inc()
		return "", err
	}

	monitoring.PaymentsReconciled.WithLabelValues(string(outcome)).Inc()
	if outcome == OutcomeActivated {
		logger.Log.Info("subscription activated",
			zap.String("orderId", orderID),
			zap.String("transactionId", transactionID))
	}
	return outcome, nil
}
