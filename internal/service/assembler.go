package service

import (
	"fmt"
	"math/rand"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"

	"go.uber.org/zap"
)

// QuestionPool is the read-only catalog capability the assembler samples
// from, kept narrow so the assembler is testable with fixture data.
type QuestionPool interface {
	ActiveQuestionIDsBySubject(subjectID uint) ([]uint, error)
}

// BlueprintSource yields a category's subject quota rows.
type BlueprintSource interface {
	BlueprintForCategory(categoryID uint) ([]model.CategorySubject, error)
}

// AssembledSet is the frozen outcome of question selection for one attempt.
type AssembledSet struct {
	QuestionIDs []uint
	Seed        int64
}

// Assembler builds the ordered question set for a test. Selection is a plain
// Fisher-Yates sample; this governs fairness of the paper, not security. The
// seed is recorded with the attempt so a set can be reassembled for audit.
type Assembler struct {
	Pool      QuestionPool
	Blueprint BlueprintSource
}

func NewAssembler(pool QuestionPool, blueprint BlueprintSource) *Assembler {
	return &Assembler{Pool: pool, Blueprint: blueprint}
}

func (a *Assembler) Assemble(test *model.Test) (*AssembledSet, error) {
	seed := time.Now().UnixNano()
	return a.AssembleWithSeed(test, seed)
}

func (a *Assembler) AssembleWithSeed(test *model.Test, seed int64) (*AssembledSet, error) {
	rng := rand.New(rand.NewSource(seed))

	var ids []uint
	if test.IsMock() {
		var err error
		ids, err = a.assembleMock(test, rng)
		if err != nil {
			return nil, err
		}
	} else {
		pool, err := a.Pool.ActiveQuestionIDsBySubject(*test.SubjectID)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, util.ValidationFailedErr("no active questions for this subject")
		}
		// Single-subject papers tolerate a thin pool: take what exists.
		if len(pool) < test.TotalQuestions {
			logger.Log.Warn("question pool smaller than test size",
				zap.Uint("testId", test.ID),
				zap.Int("pool", len(pool)),
				zap.Int("wanted", test.TotalQuestions))
		}
		ids = sample(pool, test.TotalQuestions, rng)
	}

	shuffle(ids, rng)
	return &AssembledSet{QuestionIDs: ids, Seed: seed}, nil
}

// assembleMock samples each blueprint subject independently, then the caller
// reshuffles the concatenation so subjects interleave. Mock papers fail
// loudly when a subject cannot meet its quota or the quotas do not add up to
// the test size: a mock with a missing subject block is a configuration bug,
// not a thin paper.
func (a *Assembler) assembleMock(test *model.Test, rng *rand.Rand) ([]uint, error) {
	entries, err := a.Blueprint.BlueprintForCategory(test.CategoryID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, util.ValidationFailedErr("no subject blueprint defined for this category")
	}

	quotaSum := 0
	for _, e := range entries {
		quotaSum += e.QuestionsPerTest
	}
	if quotaSum != test.TotalQuestions {
		return nil, util.ValidationFailedErr(fmt.Sprintf(
			"blueprint quotas sum to %d, test expects %d questions", quotaSum, test.TotalQuestions))
	}

	var ids []uint
	for _, e := range entries {
		pool, err := a.Pool.ActiveQuestionIDsBySubject(e.SubjectID)
		if err != nil {
			return nil, err
		}
		if len(pool) < e.QuestionsPerTest {
			return nil, util.ValidationFailedErr(fmt.Sprintf(
				"subject %d has %d active questions, blueprint requires %d", e.SubjectID, len(pool), e.QuestionsPerTest))
		}
		ids = append(ids, sample(pool, e.QuestionsPerTest, rng)...)
	}
	return ids, nil
}

// sample draws n ids without replacement via a partial Fisher-Yates.
func sample(pool []uint, n int, rng *rand.Rand) []uint {
	ids := make([]uint, len(pool))
	copy(ids, pool)
	if n > len(ids) {
		n = len(ids)
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:n]
}

func shuffle(ids []uint, rng *rand.Rand) {
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
