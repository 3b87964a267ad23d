package service

import (
	"testing"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateFreeTest(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 99) // counter irrelevant for free tests
	cat, sub, _ := seedCatalog(t, f.DB, 1)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: false})

	ent, err := f.Entitlement.Evaluate(user, tt)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
	assert.False(t, ent.ConsumesFreeCredit)
}

func TestEvaluatePaidTestWithFreeCredit(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 1) // one of two credits used
	cat, sub, _ := seedCatalog(t, f.DB, 1)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: true})

	ent, err := f.Entitlement.Evaluate(user, tt)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
	assert.True(t, ent.ConsumesFreeCredit)
}

func TestEvaluateExhaustedWithSubscription(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 2)
	cat, sub, _ := seedCatalog(t, f.DB, 1)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: true})

	require.NoError(t, f.DB.Create(&model.Subscription{
		UserID:     user.ID,
		PaymentID:  1,
		Scope:      model.ScopeSingleCategory,
		CategoryID: &cat.ID,
		StartDate:  time.Now().Add(-24 * time.Hour),
		EndDate:    time.Now().Add(24 * time.Hour),
		IsActive:   true,
	}).Error)

	ent, err := f.Entitlement.Evaluate(user, tt)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
	assert.False(t, ent.ConsumesFreeCredit, "subscription access must not burn a credit")
}

func TestEvaluateAllCategoriesSubscription(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 2)
	cat, sub, _ := seedCatalog(t, f.DB, 1)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: true})

	require.NoError(t, f.DB.Create(&model.Subscription{
		UserID:    user.ID,
		PaymentID: 1,
		Scope:     model.ScopeAllCategories,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  true,
	}).Error)

	ent, err := f.Entitlement.Evaluate(user, tt)
	require.NoError(t, err)
	assert.True(t, ent.Granted)
}

func TestEvaluateDenied(t *testing.T) {
	f := newFixture(t)
	cat, sub, _ := seedCatalog(t, f.DB, 1)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: true})

	t.Run("no subscription", func(t *testing.T) {
		user := seedUser(t, f.DB, 2)
		_, err := f.Entitlement.Evaluate(user, tt)
		assert.ErrorIs(t, err, util.ErrNoEntitlement)
	})

	t.Run("wrong category", func(t *testing.T) {
		user := &model.User{Name: "B", Email: "b@example.com", FreeTestsUsed: 2}
		require.NoError(t, f.DB.Create(user).Error)
		otherCat := uint(999)
		require.NoError(t, f.DB.Create(&model.Subscription{
			UserID:     user.ID,
			PaymentID:  2,
			Scope:      model.ScopeSingleCategory,
			CategoryID: &otherCat,
			StartDate:  time.Now().Add(-24 * time.Hour),
			EndDate:    time.Now().Add(24 * time.Hour),
			IsActive:   true,
		}).Error)
		_, err := f.Entitlement.Evaluate(user, tt)
		assert.ErrorIs(t, err, util.ErrNoEntitlement)
	})

	t.Run("expired subscription", func(t *testing.T) {
		user := &model.User{Name: "C", Email: "c@example.com", FreeTestsUsed: 2}
		require.NoError(t, f.DB.Create(user).Error)
		require.NoError(t, f.DB.Create(&model.Subscription{
			UserID:     user.ID,
			PaymentID:  3,
			Scope:      model.ScopeSingleCategory,
			CategoryID: &cat.ID,
			StartDate:  time.Now().Add(-48 * time.Hour),
			EndDate:    time.Now().Add(-24 * time.Hour),
			IsActive:   true,
		}).Error)
		_, err := f.Entitlement.Evaluate(user, tt)
		assert.ErrorIs(t, err, util.ErrNoEntitlement)
	})
}
