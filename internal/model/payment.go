package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlanScope string

const (
	ScopeAllCategories  PlanScope = "all"
	ScopeSingleCategory PlanScope = "category"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// swagger:model Plan
type Plan struct {
	BaseModel
	Name         string          `gorm:"size:100;not null" json:"name"`
	Scope        PlanScope       `gorm:"type:varchar(16);not null" json:"scope"`
	DurationDays int             `gorm:"not null" json:"durationDays"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"` // INR
	IsActive     bool            `gorm:"default:true" json:"isActive"`
}

func (Plan) TableName() string {
	return "plans"
}

// AmountPaise is the amount in the gateway's smallest currency unit.
func (p *Plan) AmountPaise() int64 {
	return p.Amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// Payment is one row per gateway order. Plan duration and scope are
// snapshotted at order creation so later plan edits cannot change what a
// captured payment activates.
// swagger:model Payment
type Payment struct {
	BaseModel
	UserID        uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	PlanID        uint            `gorm:"index;type:bigint unsigned;not null" json:"planId"`
	CategoryID    *uint           `gorm:"type:bigint unsigned" json:"categoryId,omitempty"`
	OrderID       string          `gorm:"size:64;uniqueIndex;not null" json:"orderId"` // gateway order id
	TransactionID *string         `gorm:"size:64;uniqueIndex" json:"transactionId,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string          `gorm:"size:8;default:'INR'" json:"currency"`
	Status        PaymentStatus   `gorm:"type:varchar(16);default:'PENDING';index" json:"status"`
	Scope         PlanScope       `gorm:"type:varchar(16);not null" json:"scope"`
	DurationDays  int             `gorm:"not null" json:"durationDays"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// swagger:model Subscription
type Subscription struct {
	BaseModel
	UserID     uint      `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	PaymentID  uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"paymentId"`
	Scope      PlanScope `gorm:"type:varchar(16);not null" json:"scope"`
	CategoryID *uint     `gorm:"type:bigint unsigned" json:"categoryId,omitempty"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	IsActive   bool      `gorm:"default:true" json:"isActive"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Covers reports whether the subscription grants access to tests of the
// given category at the given instant.
func (s *Subscription) Covers(categoryID uint, now time.Time) bool {
	if !s.IsActive || now.After(s.EndDate) {
		return false
	}
	if s.Scope == ScopeAllCategories {
		return true
	}
	return s.CategoryID != nil && *s.CategoryID == categoryID
}
