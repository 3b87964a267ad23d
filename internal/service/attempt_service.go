package service

import (
	"errors"
	"strings"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"
	"testprep_backend/pkg/monitoring"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	DB           *gorm.DB
	AttemptRepo  *repository.AttemptRepository
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
	Entitlement  *EntitlementService
	Assembler    *Assembler
}

func NewAttemptService(
	db *gorm.DB,
	attemptRepo *repository.AttemptRepository,
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	entitlement *EntitlementService,
	assembler *Assembler,
) *AttemptService {
	return &AttemptService{
		DB:           db,
		AttemptRepo:  attemptRepo,
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
		Entitlement:  entitlement,
		Assembler:    assembler,
	}
}

// StartAttempt opens a new attempt, or resumes the user's in-progress one.
// Resume is idempotent: the same attempt comes back unchanged and no second
// free credit is consumed. For a fresh start, the attempt row and the
// free-credit increment commit in one transaction.
func (s *AttemptService) StartAttempt(userID, testID uint) (*model.TestAttempt, error) {
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if !test.IsActive {
		return nil, util.ErrTestNotFound
	}

	if existing, err := s.AttemptRepo.FindInProgress(userID, testID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	ent, err := s.Entitlement.Evaluate(user, test)
	if err != nil {
		return nil, err
	}
	if !ent.Granted {
		return nil, util.ErrNoEntitlement
	}

	set, err := s.Assembler.Assemble(test)
	if err != nil {
		return nil, err
	}

	attempt := &model.TestAttempt{
		UserID:          userID,
		TestID:          testID,
		Status:          model.AttemptInProgress,
		QuestionSetSeed: set.Seed,
		TotalQuestions:  len(set.QuestionIDs),
		TotalMarks:      decimal.Zero,
		Percentage:      decimal.Zero,
		StartedAt:       time.Now(),
	}
	attempt.SetQuestionIDs(set.QuestionIDs)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if ent.ConsumesFreeCredit {
			ok, err := s.UserRepo.ConsumeFreeCredit(tx, userID, s.Entitlement.FreeTestLimit)
			if err != nil {
				return err
			}
			if !ok {
				// a concurrent start spent the last credit between the
				// evaluation and this transaction
				return util.ErrNoEntitlement
			}
		}

		max, err := s.AttemptRepo.MaxAttemptNumber(tx, userID, testID)
		if err != nil {
			return err
		}
		attempt.AttemptNumber = max + 1

		if err := tx.Create(attempt).Error; err != nil {
			if isDuplicateKey(err) {
				return util.ErrAttemptNumberTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()
	logger.Log.Info("attempt started",
		zap.Uint("userId", userID),
		zap.Uint("testId", testID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.Int("questions", attempt.TotalQuestions))
	return attempt, nil
}

// AttemptQuestion is a question as rendered to the candidate: no correct
// option, no explanation.
type AttemptQuestion struct {
	QuestionID uint     `json:"questionId"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
}

type AttemptQuestionsResponse struct {
	AttemptID       uint              `json:"attemptId"`
	Questions       []AttemptQuestion `json:"questions"`
	TimeLeftSeconds int               `json:"timeLeftSeconds"`
}

func (s *AttemptService) GetAttemptQuestions(attemptID, userID uint) (*AttemptQuestionsResponse, error) {
	attempt, test, err := s.loadOwnedAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptInProgress && attempt.Status != model.AttemptExpired {
		return nil, util.ErrAttemptNotInProgress
	}

	ids := attempt.GetQuestionIDs()
	byID, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	questions := make([]AttemptQuestion, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		questions = append(questions, AttemptQuestion{
			QuestionID: q.ID,
			Text:       q.Text,
			Options:    q.Options(),
		})
	}

	return &AttemptQuestionsResponse{
		AttemptID:       attempt.ID,
		Questions:       questions,
		TimeLeftSeconds: timeLeftSeconds(attempt, test, time.Now()),
	}, nil
}

// SaveAnswer persists the candidate's current selection for one question.
// Pure durability: no correctness is computed, so auto-save stays cheap.
// selectedOption nil clears the answer.
func (s *AttemptService) SaveAnswer(attemptID, userID, questionID uint, selectedOption *int, timeSpentSeconds int) error {
	attempt, test, err := s.loadOwnedAttempt(attemptID, userID)
	if err != nil {
		return err
	}
	if err := s.requireInProgress(attempt, test); err != nil {
		return err
	}

	if selectedOption != nil && (*selectedOption < 1 || *selectedOption > 4) {
		return util.ValidationFailedErr("selected option must be between 1 and 4")
	}
	if !containsID(attempt.GetQuestionIDs(), questionID) {
		return util.ErrQuestionNotInSet
	}

	return s.AttemptRepo.UpsertAnswer(&model.AttemptAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOption:   selectedOption,
		MarksObtained:    decimal.Zero,
		TimeSpentSeconds: timeSpentSeconds,
	})
}

type ResultSummary struct {
	AttemptID        uint            `json:"attemptId"`
	TestID           uint            `json:"testId"`
	AttemptNumber    int             `json:"attemptNumber"`
	TotalQuestions   int             `json:"totalQuestions"`
	AttemptedCount   int             `json:"attemptedCount"`
	CorrectCount     int             `json:"correctCount"`
	IncorrectCount   int             `json:"incorrectCount"`
	UnattemptedCount int             `json:"unattemptedCount"`
	TotalMarks       decimal.Decimal `json:"totalMarks"`
	Percentage       decimal.Decimal `json:"percentage"`
	SubmittedAt      *time.Time      `json:"submittedAt,omitempty"`
}

// SubmitAttempt scores and finalizes an in-progress attempt, at most once.
// The status flip is a guarded UPDATE inside the transaction, so a duplicate
// submit loses the race and fails instead of re-scoring.
func (s *AttemptService) SubmitAttempt(attemptID, userID uint) (*ResultSummary, error) {
	attempt, test, err := s.loadOwnedAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptSubmitted {
		return nil, util.ErrAlreadySubmitted
	}
	if err := s.requireInProgress(attempt, test); err != nil {
		return nil, err
	}

	ids := attempt.GetQuestionIDs()
	answerKey, err := s.QuestionRepo.CorrectOptions(ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var summary ScoreSummary

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// a consistent snapshot of everything saved so far
		var answers []model.AttemptAnswer
		if err := tx.Where("attempt_id = ?", attemptID).Find(&answers).Error; err != nil {
			return err
		}
		selections := make(map[uint]*int, len(answers))
		for i := range answers {
			selections[answers[i].QuestionID] = answers[i].SelectedOption
		}

		summary = ScoreAttempt(ids, answerKey, selections, test.PositiveMarks, test.NegativeMarks)

		res := tx.Model(&model.TestAttempt{}).
			Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":          model.AttemptSubmitted,
				"attempted_count": summary.AttemptedCount,
				"correct_count":   summary.CorrectCount,
				"incorrect_count": summary.IncorrectCount,
				"total_marks":     summary.TotalMarks,
				"percentage":      summary.Percentage,
				"submitted_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAlreadySubmitted
		}

		for i := range answers {
			qs := summary.PerQuestion[answers[i].QuestionID]
			correct := qs.Correct
			updates := map[string]interface{}{
				"marks_obtained": qs.Marks,
			}
			if qs.Attempted {
				updates["is_correct"] = correct
			}
			if err := tx.Model(&model.AttemptAnswer{}).
				Where("id = ?", answers[i].ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsSubmitted.Inc()
	logger.Log.Info("attempt submitted",
		zap.Uint("attemptId", attemptID),
		zap.String("marks", summary.TotalMarks.String()),
		zap.String("percentage", summary.Percentage.String()))

	return &ResultSummary{
		AttemptID:        attempt.ID,
		TestID:           attempt.TestID,
		AttemptNumber:    attempt.AttemptNumber,
		TotalQuestions:   summary.TotalQuestions,
		AttemptedCount:   summary.AttemptedCount,
		CorrectCount:     summary.CorrectCount,
		IncorrectCount:   summary.IncorrectCount,
		UnattemptedCount: summary.UnattemptedCount,
		TotalMarks:       summary.TotalMarks,
		Percentage:       summary.Percentage,
		SubmittedAt:      &now,
	}, nil
}

// GetResult is a read-only projection of a submitted attempt.
func (s *AttemptService) GetResult(attemptID, userID uint) (*ResultSummary, error) {
	attempt, _, err := s.loadOwnedAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptSubmitted {
		return nil, util.ErrAttemptNotSubmitted
	}
	return &ResultSummary{
		AttemptID:        attempt.ID,
		TestID:           attempt.TestID,
		AttemptNumber:    attempt.AttemptNumber,
		TotalQuestions:   attempt.TotalQuestions,
		AttemptedCount:   attempt.AttemptedCount,
		CorrectCount:     attempt.CorrectCount,
		IncorrectCount:   attempt.IncorrectCount,
		UnattemptedCount: attempt.TotalQuestions - attempt.AttemptedCount,
		TotalMarks:       attempt.TotalMarks,
		Percentage:       attempt.Percentage,
		SubmittedAt:      attempt.SubmittedAt,
	}, nil
}

// SolutionEntry is the per-question review row, owner-only.
type SolutionEntry struct {
	QuestionID     uint            `json:"questionId"`
	Text           string          `json:"text"`
	Options        []string        `json:"options"`
	CorrectOption  int             `json:"correctOption"`
	SelectedOption *int            `json:"selectedOption,omitempty"`
	IsCorrect      *bool           `json:"isCorrect,omitempty"`
	MarksObtained  decimal.Decimal `json:"marksObtained"`
	Explanation    string          `json:"explanation,omitempty"`
}

func (s *AttemptService) GetSolution(attemptID, userID uint) ([]SolutionEntry, error) {
	attempt, _, err := s.loadOwnedAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptSubmitted {
		return nil, util.ErrAttemptNotSubmitted
	}

	ids := attempt.GetQuestionIDs()
	byID, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	answers, err := s.AttemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	ansByQ := make(map[uint]*model.AttemptAnswer, len(answers))
	for i := range answers {
		ansByQ[answers[i].QuestionID] = &answers[i]
	}

	entries := make([]SolutionEntry, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		entry := SolutionEntry{
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       q.Options(),
			CorrectOption: q.CorrectOption,
			MarksObtained: decimal.Zero,
			Explanation:   q.Explanation,
		}
		if ans := ansByQ[id]; ans != nil {
			entry.SelectedOption = ans.SelectedOption
			entry.IsCorrect = ans.IsCorrect
			entry.MarksObtained = ans.MarksObtained
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *AttemptService) ListAttempts(userID uint) ([]model.TestAttempt, error) {
	return s.AttemptRepo.ListByUser(userID)
}

// loadOwnedAttempt fetches the attempt and its test, enforcing ownership.
func (s *AttemptService) loadOwnedAttempt(attemptID, userID uint) (*model.TestAttempt, *model.Test, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrAttemptNotFound
		}
		return nil, nil, err
	}
	if attempt.UserID != userID {
		return nil, nil, util.ErrNotAttemptOwner
	}
	test, err := s.TestRepo.FindByID(attempt.TestID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, test, nil
}

// requireInProgress rejects mutations on finished attempts and lazily flips
// an over-duration attempt to expired. There is no background sweeper; the
// next write is where expiry becomes visible.
func (s *AttemptService) requireInProgress(attempt *model.TestAttempt, test *model.Test) error {
	if attempt.Status != model.AttemptInProgress {
		return util.ErrAttemptNotInProgress
	}
	if timeLeftSeconds(attempt, test, time.Now()) > 0 {
		return nil
	}
	err := s.DB.Model(&model.TestAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
		Update("status", model.AttemptExpired).Error
	if err != nil {
		return err
	}
	return util.ErrAttemptExpired
}

func timeLeftSeconds(attempt *model.TestAttempt, test *model.Test, now time.Time) int {
	deadline := attempt.StartedAt.Add(time.Duration(test.DurationMinutes) * time.Minute)
	left := int(deadline.Sub(now).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
