package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menahealth/medflow-api/internal/model"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
)

type fakeUserRepo struct {
	users          map[string]*model.User
	specialtyCalls int
	triageCalls    int
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	m := make(map[string]*model.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error { return nil }

func (f *fakeUserRepo) Get(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) Update(ctx context.Context, u *model.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return apperrors.NotFound("user", nil)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindBySpecialty(ctx context.Context, specialty model.Specialty) ([]model.UserRef, error) {
	f.specialtyCalls++
	var out []model.UserRef
	for _, u := range f.users {
		for _, sp := range u.Specialties {
			if sp == specialty {
				out = append(out, model.UserRef{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName})
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) FindByAccountType(ctx context.Context, accountType model.AccountType) ([]model.UserRef, error) {
	f.triageCalls++
	var out []model.UserRef
	for _, u := range f.users {
		if u.AccountType == accountType {
			out = append(out, model.UserRef{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName})
		}
	}
	return out, nil
}

func doctor(id string, specialties ...model.Specialty) *model.User {
	return &model.User{
		ID:          id,
		Email:       id + "@example.org",
		FirstName:   "Doc",
		LastName:    id,
		AccountType: model.AccountTypeDoctor,
		Specialties: specialties,
	}
}

func TestDoctorsBySpecialtyMatchesList(t *testing.T) {
	repo := newFakeUserRepo(
		doctor("d1", model.SpecialtyCardiology, model.SpecialtyUrology),
		doctor("d2", model.SpecialtyNeurology),
	)
	svc := NewService(repo)

	refs, err := svc.DoctorsBySpecialty(context.Background(), model.SpecialtyCardiology)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "d1@example.org", refs[0].Email)
}

func TestDoctorsBySpecialtyRejectsUnknown(t *testing.T) {
	svc := NewService(newFakeUserRepo())

	_, err := svc.DoctorsBySpecialty(context.Background(), "Alchemy")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDoctorsBySpecialtyCached(t *testing.T) {
	repo := newFakeUserRepo(doctor("d1", model.SpecialtyCardiology))
	svc := NewService(repo)

	_, err := svc.DoctorsBySpecialty(context.Background(), model.SpecialtyCardiology)
	require.NoError(t, err)
	_, err = svc.DoctorsBySpecialty(context.Background(), model.SpecialtyCardiology)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.specialtyCalls, "second lookup must be served from cache")
}

func TestUpdateUserFlushesRecipientCache(t *testing.T) {
	repo := newFakeUserRepo(doctor("d1", model.SpecialtyCardiology))
	svc := NewService(repo)

	_, err := svc.DoctorsBySpecialty(context.Background(), model.SpecialtyCardiology)
	require.NoError(t, err)

	remove := model.SpecialtyCardiology
	_, err = svc.UpdateUser(context.Background(), model.Caller{UserID: "d1"}, "d1", &model.UpdateUserRequest{
		RemoveSpecialty: &remove,
	})
	require.NoError(t, err)

	refs, err := svc.DoctorsBySpecialty(context.Background(), model.SpecialtyCardiology)
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Equal(t, 2, repo.specialtyCalls)
}

func TestUpdateUserAccountTypeAdminOnly(t *testing.T) {
	repo := newFakeUserRepo(doctor("d1", model.SpecialtyCardiology))
	svc := NewService(repo)

	evac := model.AccountTypeEvac
	_, err := svc.UpdateUser(context.Background(), model.Caller{UserID: "x"}, "d1", &model.UpdateUserRequest{
		AccountType: &evac,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	updated, err := svc.UpdateUser(context.Background(), model.Caller{UserID: "x", Admin: true}, "d1", &model.UpdateUserRequest{
		AccountType: &evac,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeEvac, updated.AccountType)
}

func TestUpdateUserDropsUnknownSpecialties(t *testing.T) {
	repo := newFakeUserRepo(doctor("d1"))
	svc := NewService(repo)

	specialties := []model.Specialty{model.SpecialtyNeurology, "Alchemy"}
	updated, err := svc.UpdateUser(context.Background(), model.Caller{UserID: "d1"}, "d1", &model.UpdateUserRequest{
		Specialties: &specialties,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Specialty{model.SpecialtyNeurology}, updated.Specialties)
}

func TestTriageUsers(t *testing.T) {
	triage := &model.User{ID: "t1", Email: "t1@example.org", AccountType: model.AccountTypeTriage}
	repo := newFakeUserRepo(doctor("d1"), triage)
	svc := NewService(repo)

	refs, err := svc.TriageUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "t1@example.org", refs[0].Email)
}
