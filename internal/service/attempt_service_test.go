package service

import (
	"testing"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAttemptFreezesQuestionSet(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: false, questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)

	assert.Equal(t, model.AttemptInProgress, attempt.Status)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Len(t, attempt.GetQuestionIDs(), 5)
	assert.NotZero(t, attempt.QuestionSetSeed)

	// free test: no credit burned
	fresh, err := f.Users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.FreeTestsUsed)
}

func TestStartAttemptConsumesFreeCreditOnce(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: true})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)

	fresh, err := f.Users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.FreeTestsUsed)

	// starting again resumes the open attempt and costs nothing
	again, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, again.ID)
	assert.Equal(t, attempt.GetQuestionIDs(), again.GetQuestionIDs())

	fresh, err = f.Users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.FreeTestsUsed)
}

func TestStartAttemptDeniedWhenExhausted(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 2) // limit is 2 in the fixture
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{paid: true})

	_, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.ErrorIs(t, err, util.ErrNoEntitlement)
	assert.Equal(t, util.KindAccessDenied, util.KindOf(err))

	var count int64
	require.NoError(t, f.DB.Model(&model.TestAttempt{}).Count(&count).Error)
	assert.Zero(t, count, "denied start must not leave an attempt row")
}

func TestStartAttemptInactiveTest(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{})
	require.NoError(t, f.DB.Model(tt).Update("is_active", false).Error)

	_, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}

func TestAttemptNumberIncrements(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{})

	first, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	_, err = f.Attempt.SubmitAttempt(first.ID, user.ID)
	require.NoError(t, err)

	second, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, second.AttemptNumber)
}

func TestGetAttemptQuestionsHidesAnswers(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5, duration: 30})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)

	resp, err := f.Attempt.GetAttemptQuestions(attempt.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, resp.AttemptID)
	require.Len(t, resp.Questions, 5)
	for _, q := range resp.Questions {
		assert.Len(t, q.Options, 4)
		assert.NotEmpty(t, q.Text)
	}
	assert.Greater(t, resp.TimeLeftSeconds, 0)
	assert.LessOrEqual(t, resp.TimeLeftSeconds, 30*60)
}

func TestGetAttemptQuestionsOwnership(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	other := &model.User{Name: "Other", Email: "other@example.com"}
	require.NoError(t, f.DB.Create(other).Error)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)

	_, err = f.Attempt.GetAttemptQuestions(attempt.ID, other.ID)
	assert.ErrorIs(t, err, util.ErrNotAttemptOwner)
	assert.Equal(t, util.KindAccessDenied, util.KindOf(err))
}

func TestSaveAnswerValidation(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	qid := attempt.GetQuestionIDs()[0]

	err = f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(5), 10)
	assert.Equal(t, util.KindValidationFailed, util.KindOf(err))

	err = f.Attempt.SaveAnswer(attempt.ID, user.ID, 999999, intp(1), 10)
	assert.ErrorIs(t, err, util.ErrQuestionNotInSet)

	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(1), 10))
}

func TestSaveAnswerLastWriteWins(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 20)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	qid := attempt.GetQuestionIDs()[0]

	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(1), 10))
	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(3), 25))
	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, nil, 30)) // cleared

	answers, err := f.Attempts.GetAnswers(attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1, "repeated saves must not duplicate the row")
	assert.Nil(t, answers[0].SelectedOption)
	assert.Equal(t, 30, answers[0].TimeSpentSeconds)
}

func TestSubmitAttemptScores(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 10) // correct option is always 2
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 10})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	ids := attempt.GetQuestionIDs()
	require.Len(t, ids, 10)

	// 3 correct, 2 wrong, 5 untouched
	for _, qid := range ids[:3] {
		require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(2), 20))
	}
	for _, qid := range ids[3:5] {
		require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(4), 20))
	}

	result, err := f.Attempt.SubmitAttempt(attempt.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalQuestions)
	assert.Equal(t, 5, result.AttemptedCount)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 2, result.IncorrectCount)
	assert.Equal(t, 5, result.UnattemptedCount)
	assert.True(t, result.TotalMarks.Equal(decimal.RequireFromString("2.5")), "got %s", result.TotalMarks)
	assert.True(t, result.Percentage.Equal(decimal.NewFromInt(25)), "got %s", result.Percentage)
	require.NotNil(t, result.SubmittedAt)

	// persisted projection matches
	stored, err := f.Attempt.GetResult(attempt.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalMarks.Equal(result.TotalMarks))
	assert.Equal(t, result.CorrectCount, stored.CorrectCount)
}

func TestSubmitAttemptAtMostOnce(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 10)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	qid := attempt.GetQuestionIDs()[0]
	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(2), 20))

	first, err := f.Attempt.SubmitAttempt(attempt.ID, user.ID)
	require.NoError(t, err)

	_, err = f.Attempt.SubmitAttempt(attempt.ID, user.ID)
	assert.ErrorIs(t, err, util.ErrAlreadySubmitted)

	// the recorded score must be untouched by the duplicate
	stored, err := f.Attempt.GetResult(attempt.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalMarks.Equal(first.TotalMarks))
}

func TestResultBeforeSubmission(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 10)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)

	_, err = f.Attempt.GetResult(attempt.ID, user.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotSubmitted)
	_, err = f.Attempt.GetSolution(attempt.ID, user.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotSubmitted)
}

func TestSolutionRevealsAnswers(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 10)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	ids := attempt.GetQuestionIDs()
	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, ids[0], intp(2), 20))
	require.NoError(t, f.Attempt.SaveAnswer(attempt.ID, user.ID, ids[1], intp(1), 20))
	_, err = f.Attempt.SubmitAttempt(attempt.ID, user.ID)
	require.NoError(t, err)

	entries, err := f.Attempt.GetSolution(attempt.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	byQ := make(map[uint]SolutionEntry, len(entries))
	for _, e := range entries {
		assert.Equal(t, 2, e.CorrectOption)
		assert.Equal(t, "because", e.Explanation)
		byQ[e.QuestionID] = e
	}

	correct := byQ[ids[0]]
	require.NotNil(t, correct.IsCorrect)
	assert.True(t, *correct.IsCorrect)
	assert.True(t, correct.MarksObtained.Equal(decimal.NewFromInt(1)))

	wrong := byQ[ids[1]]
	require.NotNil(t, wrong.IsCorrect)
	assert.False(t, *wrong.IsCorrect)
	assert.True(t, wrong.MarksObtained.Equal(decimal.RequireFromString("-0.25")))

	untouched := byQ[ids[2]]
	assert.Nil(t, untouched.SelectedOption)
	assert.Nil(t, untouched.IsCorrect)
	assert.True(t, untouched.MarksObtained.IsZero())

	// solutions are owner-only
	other := &model.User{Name: "Other", Email: "other2@example.com"}
	require.NoError(t, f.DB.Create(other).Error)
	_, err = f.Attempt.GetSolution(attempt.ID, other.ID)
	assert.ErrorIs(t, err, util.ErrNotAttemptOwner)
}

func TestAttemptExpiryOnWrite(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 10)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5, duration: 30})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	qid := attempt.GetQuestionIDs()[0]

	// push the clock past the deadline
	started := time.Now().Add(-31 * time.Minute)
	require.NoError(t, f.DB.Model(&model.TestAttempt{}).
		Where("id = ?", attempt.ID).Update("started_at", started).Error)

	err = f.Attempt.SaveAnswer(attempt.ID, user.ID, qid, intp(2), 20)
	assert.ErrorIs(t, err, util.ErrAttemptExpired)

	fresh, err := f.Attempts.FindByID(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptExpired, fresh.Status)

	_, err = f.Attempt.SubmitAttempt(attempt.ID, user.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotInProgress)

	// the paper stays viewable with the clock at zero
	resp, err := f.Attempt.GetAttemptQuestions(attempt.ID, user.ID)
	require.NoError(t, err)
	assert.Zero(t, resp.TimeLeftSeconds)
}

func TestListAttempts(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.DB, 0)
	cat, sub, _ := seedCatalog(t, f.DB, 10)
	tt := seedSubjectTest(t, f.DB, cat.ID, sub.ID, testOpts{questions: 5})

	attempt, err := f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)
	_, err = f.Attempt.SubmitAttempt(attempt.ID, user.ID)
	require.NoError(t, err)
	_, err = f.Attempt.StartAttempt(user.ID, tt.ID)
	require.NoError(t, err)

	attempts, err := f.Attempt.ListAttempts(user.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}
