package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionCovers(t *testing.T) {
	now := time.Now()
	cat := uint(3)

	cases := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"all categories", Subscription{Scope: ScopeAllCategories, IsActive: true, EndDate: now.Add(time.Hour)}, true},
		{"matching category", Subscription{Scope: ScopeSingleCategory, CategoryID: &cat, IsActive: true, EndDate: now.Add(time.Hour)}, true},
		{"other category", Subscription{Scope: ScopeSingleCategory, CategoryID: uintp(9), IsActive: true, EndDate: now.Add(time.Hour)}, false},
		{"nil category on scoped plan", Subscription{Scope: ScopeSingleCategory, IsActive: true, EndDate: now.Add(time.Hour)}, false},
		{"expired", Subscription{Scope: ScopeAllCategories, IsActive: true, EndDate: now.Add(-time.Hour)}, false},
		{"deactivated", Subscription{Scope: ScopeAllCategories, IsActive: false, EndDate: now.Add(time.Hour)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sub.Covers(cat, now))
		})
	}
}

func uintp(v uint) *uint { return &v }

func TestPlanAmountPaise(t *testing.T) {
	p := Plan{Amount: decimal.RequireFromString("299.50")}
	assert.Equal(t, int64(29950), p.AmountPaise())
}

func TestTestIsMock(t *testing.T) {
	sub := uint(1)
	assert.True(t, (&Test{}).IsMock())
	assert.False(t, (&Test{SubjectID: &sub}).IsMock())
}

func TestAttemptQuestionIDsRoundTrip(t *testing.T) {
	var a TestAttempt
	a.SetQuestionIDs([]uint{5, 3, 9})
	assert.Equal(t, []uint{5, 3, 9}, a.GetQuestionIDs(), "order must survive storage")
}
