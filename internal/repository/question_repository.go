package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"testprep_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const poolCacheTTL = 5 * time.Minute

// QuestionRepository reads the question catalog. The per-subject id pool is
// the hot path of test assembly, so it is cached in redis for a short TTL;
// the repository works without redis (rdb nil) for tests and local runs.
type QuestionRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewQuestionRepository(db *gorm.DB, rdb *redis.Client) *QuestionRepository {
	return &QuestionRepository{DB: db, RDB: rdb}
}

// ActiveQuestionIDsBySubject returns ids of active questions under the
// subject's active topics.
func (r *QuestionRepository) ActiveQuestionIDsBySubject(subjectID uint) ([]uint, error) {
	if ids, ok := r.cachedPool(subjectID); ok {
		return ids, nil
	}

	var ids []uint
	err := r.DB.Model(&model.Question{}).
		Joins("JOIN topics ON topics.id = questions.topic_id").
		Where("topics.subject_id = ? AND topics.is_active = ? AND questions.is_active = ?", subjectID, true, true).
		Pluck("questions.id", &ids).Error
	if err != nil {
		return nil, err
	}

	r.storePool(subjectID, ids)
	return ids, nil
}

func (r *QuestionRepository) cachedPool(subjectID uint) ([]uint, bool) {
	if r.RDB == nil {
		return nil, false
	}
	raw, err := r.RDB.Get(context.Background(), poolCacheKey(subjectID)).Bytes()
	if err != nil {
		return nil, false
	}
	var ids []uint
	if json.Unmarshal(raw, &ids) != nil {
		return nil, false
	}
	return ids, true
}

func (r *QuestionRepository) storePool(subjectID uint, ids []uint) {
	if r.RDB == nil {
		return
	}
	raw, _ := json.Marshal(ids)
	r.RDB.Set(context.Background(), poolCacheKey(subjectID), raw, poolCacheTTL)
}

func poolCacheKey(subjectID uint) string {
	return fmt.Sprintf("qpool:subject:%d", subjectID)
}

// FindByIDs loads full question rows keyed by id.
func (r *QuestionRepository) FindByIDs(ids []uint) (map[uint]model.Question, error) {
	var questions []model.Question
	if err := r.DB.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

// CorrectOptions returns the answer key for the given question ids.
func (r *QuestionRepository) CorrectOptions(ids []uint) (map[uint]int, error) {
	type row struct {
		ID            uint
		CorrectOption int
	}
	var rows []row
	if err := r.DB.Model(&model.Question{}).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	key := make(map[uint]int, len(rows))
	for _, rw := range rows {
		key[rw.ID] = rw.CorrectOption
	}
	return key, nil
}
