package service

import (
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
)

// Entitlement is the outcome of an access evaluation. ConsumesFreeCredit is
// advisory: the counter is only burned inside the transaction that creates
// the attempt, so a failed creation never costs a credit.
type Entitlement struct {
	Granted            bool
	ConsumesFreeCredit bool
}

type EntitlementService struct {
	UserRepo      *repository.UserRepository
	SubRepo       *repository.SubscriptionRepository
	FreeTestLimit int
}

func NewEntitlementService(userRepo *repository.UserRepository, subRepo *repository.SubscriptionRepository, freeTestLimit int) *EntitlementService {
	return &EntitlementService{
		UserRepo:      userRepo,
		SubRepo:       subRepo,
		FreeTestLimit: freeTestLimit,
	}
}

// Evaluate decides whether user may start test. Read-only: no counter is
// mutated here.
func (s *EntitlementService) Evaluate(user *model.User, test *model.Test) (Entitlement, error) {
	if !test.IsPaid {
		return Entitlement{Granted: true}, nil
	}

	if user.FreeTestsUsed < s.FreeTestLimit {
		return Entitlement{Granted: true, ConsumesFreeCredit: true}, nil
	}

	sub, err := s.SubRepo.FindActiveCovering(user.ID, test.CategoryID, time.Now())
	if err != nil {
		return Entitlement{}, err
	}
	if sub != nil {
		return Entitlement{Granted: true}, nil
	}

	return Entitlement{}, util.ErrNoEntitlement
}
