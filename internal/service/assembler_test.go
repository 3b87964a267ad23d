package service

import (
	"testing"

	"testprep_backend/internal/model"
	"testprep_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool map[uint][]uint

func (p fakePool) ActiveQuestionIDsBySubject(subjectID uint) ([]uint, error) {
	return p[subjectID], nil
}

type fakeBlueprint []model.CategorySubject

func (b fakeBlueprint) BlueprintForCategory(categoryID uint) ([]model.CategorySubject, error) {
	return b, nil
}

func idRange(from, to uint) []uint {
	ids := make([]uint, 0, to-from+1)
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}

func subjectTest(subjectID uint, total int) *model.Test {
	return &model.Test{CategoryID: 1, SubjectID: &subjectID, TotalQuestions: total}
}

func TestAssembleSubjectTest(t *testing.T) {
	a := NewAssembler(fakePool{7: idRange(1, 100)}, fakeBlueprint{})

	set, err := a.Assemble(subjectTest(7, 25))
	require.NoError(t, err)
	require.Len(t, set.QuestionIDs, 25)

	seen := make(map[uint]bool)
	for _, id := range set.QuestionIDs {
		assert.False(t, seen[id], "question %d drawn twice", id)
		assert.True(t, id >= 1 && id <= 100)
		seen[id] = true
	}
}

func TestAssembleSubjectTestThinPool(t *testing.T) {
	a := NewAssembler(fakePool{7: idRange(1, 3)}, fakeBlueprint{})

	set, err := a.Assemble(subjectTest(7, 25))
	require.NoError(t, err)
	assert.Len(t, set.QuestionIDs, 3)
}

func TestAssembleSubjectTestEmptyPool(t *testing.T) {
	a := NewAssembler(fakePool{}, fakeBlueprint{})

	_, err := a.Assemble(subjectTest(7, 25))
	require.Error(t, err)
	assert.Equal(t, util.KindValidationFailed, util.KindOf(err))
}

func TestAssembleMockTest(t *testing.T) {
	pool := fakePool{
		1: idRange(1, 100),
		2: idRange(101, 200),
	}
	blueprint := fakeBlueprint{
		{CategoryID: 1, SubjectID: 1, QuestionsPerTest: 25},
		{CategoryID: 1, SubjectID: 2, QuestionsPerTest: 25},
	}
	a := NewAssembler(pool, blueprint)

	set, err := a.Assemble(&model.Test{CategoryID: 1, TotalQuestions: 50})
	require.NoError(t, err)
	require.Len(t, set.QuestionIDs, 50)

	var fromFirst, fromSecond int
	seen := make(map[uint]bool)
	for _, id := range set.QuestionIDs {
		assert.False(t, seen[id], "question %d drawn twice", id)
		seen[id] = true
		if id <= 100 {
			fromFirst++
		} else {
			fromSecond++
		}
	}
	assert.Equal(t, 25, fromFirst)
	assert.Equal(t, 25, fromSecond)
}

func TestAssembleMockQuotaMismatch(t *testing.T) {
	a := NewAssembler(
		fakePool{1: idRange(1, 100)},
		fakeBlueprint{{CategoryID: 1, SubjectID: 1, QuestionsPerTest: 30}},
	)

	_, err := a.Assemble(&model.Test{CategoryID: 1, TotalQuestions: 50})
	require.Error(t, err)
	assert.Equal(t, util.KindValidationFailed, util.KindOf(err))
}

func TestAssembleMockSubjectShortfall(t *testing.T) {
	a := NewAssembler(
		fakePool{
			1: idRange(1, 100),
			2: idRange(101, 110), // 10 active, quota wants 25
		},
		fakeBlueprint{
			{CategoryID: 1, SubjectID: 1, QuestionsPerTest: 25},
			{CategoryID: 1, SubjectID: 2, QuestionsPerTest: 25},
		},
	)

	_, err := a.Assemble(&model.Test{CategoryID: 1, TotalQuestions: 50})
	require.Error(t, err)
	assert.Equal(t, util.KindValidationFailed, util.KindOf(err))
}

func TestAssembleMockNoBlueprint(t *testing.T) {
	a := NewAssembler(fakePool{}, fakeBlueprint{})

	_, err := a.Assemble(&model.Test{CategoryID: 1, TotalQuestions: 50})
	require.Error(t, err)
	assert.Equal(t, util.KindValidationFailed, util.KindOf(err))
}

func TestAssembleSeedReproducibility(t *testing.T) {
	a := NewAssembler(fakePool{7: idRange(1, 100)}, fakeBlueprint{})
	tt := subjectTest(7, 25)

	first, err := a.AssembleWithSeed(tt, 42)
	require.NoError(t, err)
	second, err := a.AssembleWithSeed(tt, 42)
	require.NoError(t, err)
	other, err := a.AssembleWithSeed(tt, 43)
	require.NoError(t, err)

	assert.Equal(t, first.QuestionIDs, second.QuestionIDs)
	assert.Equal(t, int64(42), first.Seed)
	assert.NotEqual(t, first.QuestionIDs, other.QuestionIDs)
}
