package service

import (
	"testing"

	"testprep_backend/internal/config"
	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema. The
// connection pool is pinned to one connection so every query sees the same
// in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, freeTestsUsed int) *model.User {
	t.Helper()
	u := &model.User{
		Name:          "Asha",
		Email:         "asha@example.com",
		Role:          model.Student,
		FreeTestsUsed: freeTestsUsed,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedCatalog creates one category with one subject, one topic, and n active
// questions whose correct option is always 2.
func seedCatalog(t *testing.T, db *gorm.DB, n int) (*model.Category, *model.Subject, []model.Question) {
	t.Helper()
	cat := &model.Category{Name: "SSC", IsActive: true}
	require.NoError(t, db.Create(cat).Error)
	sub := &model.Subject{Name: "Reasoning", IsActive: true}
	require.NoError(t, db.Create(sub).Error)
	topic := &model.Topic{SubjectID: sub.ID, Name: "Series", IsActive: true}
	require.NoError(t, db.Create(topic).Error)

	questions := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := model.Question{
			TopicID:       topic.ID,
			Text:          "pick the odd one out",
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectOption: 2,
			Difficulty:    model.Medium,
			Explanation:   "because",
			IsActive:      true,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return cat, sub, questions
}

type testOpts struct {
	paid      bool
	questions int
	duration  int
}

func seedSubjectTest(t *testing.T, db *gorm.DB, categoryID, subjectID uint, opts testOpts) *model.Test {
	t.Helper()
	if opts.questions == 0 {
		opts.questions = 5
	}
	if opts.duration == 0 {
		opts.duration = 30
	}
	tt := &model.Test{
		CategoryID:      categoryID,
		SubjectID:       &subjectID,
		TestNumber:      nextTestNumber(t, db, categoryID),
		Title:           "Practice Set",
		TotalQuestions:  opts.questions,
		DurationMinutes: opts.duration,
		PositiveMarks:   decimal.NewFromInt(1),
		NegativeMarks:   decimal.RequireFromString("0.25"),
		IsPaid:          opts.paid,
		IsActive:        true,
	}
	require.NoError(t, db.Create(tt).Error)
	return tt
}

func nextTestNumber(t *testing.T, db *gorm.DB, categoryID uint) int {
	t.Helper()
	var max int
	require.NoError(t, db.Model(&model.Test{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(test_number), 0)").
		Scan(&max).Error)
	return max + 1
}

type fixture struct {
	DB          *gorm.DB
	Users       *repository.UserRepository
	Tests       *repository.TestRepository
	Questions   *repository.QuestionRepository
	Attempts    *repository.AttemptRepository
	Subs        *repository.SubscriptionRepository
	Payments    *repository.PaymentRepository
	Plans       *repository.PlanRepository
	Entitlement *EntitlementService
	Attempt     *AttemptService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	users := repository.NewUserRepository(db)
	tests := repository.NewTestRepository(db)
	questions := repository.NewQuestionRepository(db, nil)
	attempts := repository.NewAttemptRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	payments := repository.NewPaymentRepository(db)
	plans := repository.NewPlanRepository(db)

	entitlement := NewEntitlementService(users, subs, 2)
	assembler := NewAssembler(questions, tests)
	attempt := NewAttemptService(db, attempts, tests, questions, users, entitlement, assembler)

	return &fixture{
		DB:          db,
		Users:       users,
		Tests:       tests,
		Questions:   questions,
		Attempts:    attempts,
		Subs:        subs,
		Payments:    payments,
		Plans:       plans,
		Entitlement: entitlement,
		Attempt:     attempt,
	}
}

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

// stubGateway hands out deterministic order ids without any network.
type stubGateway struct {
	nextOrderID string
	lastAmount  int64
	lastReceipt string
}

func (g *stubGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	g.lastAmount = amountPaise
	g.lastReceipt = receipt
	return g.nextOrderID, nil
}

func newPaymentFixture(t *testing.T) (*fixture, *PaymentService, *stubGateway) {
	t.Helper()
	f := newFixture(t)
	gw := &stubGateway{nextOrderID: "order_test_1"}
	svc := NewPaymentService(f.DB, f.Payments, f.Plans, gw, config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
	})
	return f, svc, gw
}
