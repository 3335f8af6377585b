package user

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
)

// Recipient lookups run on every triage action, so results are held in a
// short-lived cache; staleness of a few seconds is acceptable for
// notification fan-out.
const lookupTTL = 30 * time.Second

type Service struct {
	repo  repository.UserRepository
	cache *cache.Cache
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(lookupTTL, 2*lookupTTL),
	}
}

// DoctorsBySpecialty returns the notification projection of every doctor
// whose specialty list contains specialty. An empty slice is a valid
// answer, not an error.
func (s *Service) DoctorsBySpecialty(ctx context.Context, specialty model.Specialty) ([]model.UserRef, error) {
	if !model.ValidSpecialty(specialty) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown specialty %q", specialty), nil)
	}

	key := "specialty:" + string(specialty)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]model.UserRef), nil
	}

	refs, err := s.repo.FindBySpecialty(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("failed to find doctors by specialty: %w", err)
	}

	s.cache.Set(key, refs, cache.DefaultExpiration)
	return refs, nil
}

// TriageUsers returns every triage coordinator account.
func (s *Service) TriageUsers(ctx context.Context) ([]model.UserRef, error) {
	const key = "account_type:triage"
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]model.UserRef), nil
	}

	refs, err := s.repo.FindByAccountType(ctx, model.AccountTypeTriage)
	if err != nil {
		return nil, fmt.Errorf("failed to find triage users: %w", err)
	}

	s.cache.Set(key, refs, cache.DefaultExpiration)
	return refs, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

// UpdateUser applies profile changes. Account type changes are admin-only;
// specialty values outside the enumerated list are dropped.
func (s *Service) UpdateUser(ctx context.Context, caller model.Caller, id string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.DOB != nil {
		user.DOB = req.DOB
	}
	if req.Countries != nil {
		user.Countries = *req.Countries
	}
	if req.Languages != nil {
		user.Languages = *req.Languages
	}

	if req.AccountType != nil && *req.AccountType != user.AccountType {
		if !caller.Admin {
			return nil, apperrors.Forbidden("only admins may change account type", nil)
		}
		user.AccountType = *req.AccountType
	}

	if req.Specialties != nil {
		valid := make([]model.Specialty, 0, len(*req.Specialties))
		for _, sp := range *req.Specialties {
			if model.ValidSpecialty(sp) {
				valid = append(valid, sp)
			}
		}
		user.Specialties = valid
	}
	if req.RemoveSpecialty != nil {
		kept := user.Specialties[:0]
		for _, sp := range user.Specialties {
			if sp != *req.RemoveSpecialty {
				kept = append(kept, sp)
			}
		}
		user.Specialties = kept
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Recipient caches may now be stale.
	s.cache.Flush()

	return user, nil
}
