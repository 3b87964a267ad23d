package service

import (
	"errors"

	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"

	"gorm.io/gorm"
)

// TestService is the thin read surface over the test catalog. Catalog
// administration lives in a separate admin service.
type TestService struct {
	TestRepo *repository.TestRepository
}

func NewTestService(testRepo *repository.TestRepository) *TestService {
	return &TestService{TestRepo: testRepo}
}

func (s *TestService) ListTests(categoryID uint) ([]model.Test, error) {
	return s.TestRepo.ListActive(categoryID)
}

func (s *TestService) GetTest(id uint) (*model.Test, error) {
	t, err := s.TestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if !t.IsActive {
		return nil, util.ErrTestNotFound
	}
	return t, nil
}
