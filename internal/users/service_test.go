package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type fakeRepo struct {
	nextID int64
	users  map[int64]*User
	hashes map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, users: map[int64]*User{}, hashes: map[int64]string{}}
}

func (f *fakeRepo) seed(email string, isAdmin, isActive bool) int64 {
	id := f.nextID
	f.nextID++
	f.users[id] = &User{ID: id, Email: email, IsAdmin: isAdmin, IsActive: isActive, CreatedAt: time.Now()}
	return id
}

func (f *fakeRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return *u, nil
}

func (f *fakeRepo) Create(ctx context.Context, email, passwordHash string, isAdmin bool) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return User{}, httpx.ErrDuplicate
		}
	}
	id := f.seed(email, isAdmin, true)
	f.hashes[id] = passwordHash
	return *f.users[id], nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if _, ok := f.users[id]; !ok {
		return httpx.ErrNotFound
	}
	f.hashes[id] = passwordHash
	return nil
}

func (f *fakeRepo) UpdateFlags(ctx context.Context, id int64, isAdmin, isActive *bool) error {
	u, ok := f.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if isAdmin != nil {
		u.IsAdmin = *isAdmin
	}
	if isActive != nil {
		u.IsActive = *isActive
	}
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.users, id)
	delete(f.hashes, id)
	return nil
}

func (f *fakeRepo) CountAdmins(ctx context.Context) (int, error) {
	count := 0
	for _, u := range f.users {
		if u.IsAdmin && u.IsActive {
			count++
		}
	}
	return count, nil
}

func boolPtr(v bool) *bool { return &v }

func TestCreateHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "Fiscal@Example.com",
		Password: "str0ngpass",
		IsAdmin:  false,
	})
	require.NoError(t, err)
	require.Equal(t, "fiscal@example.com", user.Email)
	require.True(t, user.IsActive)

	hash := repo.hashes[user.ID]
	require.NotEqual(t, "str0ngpass", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("str0ngpass")))
}

func TestCreateRejectsWeakPasswords(t *testing.T) {
	svc := NewService(newFakeRepo())

	for _, password := range []string{"short1", "onlyletters", "12345678"} {
		_, err := svc.Create(context.Background(), CreateUserRequest{
			Email:    "user@example.com",
			Password: password,
		})
		require.ErrorIs(t, err, httpx.ErrValidation, "password %q", password)
	}
}

func TestUpdateKeepsLastActiveAdmin(t *testing.T) {
	repo := newFakeRepo()
	adminID := repo.seed("admin@example.com", true, true)
	repo.seed("user@example.com", false, true)
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), adminID, UpdateUserRequest{IsAdmin: boolPtr(false)})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Update(context.Background(), adminID, UpdateUserRequest{IsActive: boolPtr(false)})
	require.ErrorIs(t, err, httpx.ErrValidation)

	require.True(t, repo.users[adminID].IsAdmin)
	require.True(t, repo.users[adminID].IsActive)
}

func TestUpdateDemotesAdminWhenAnotherRemains(t *testing.T) {
	repo := newFakeRepo()
	firstID := repo.seed("first@example.com", true, true)
	repo.seed("second@example.com", true, true)
	svc := NewService(repo)

	user, err := svc.Update(context.Background(), firstID, UpdateUserRequest{IsAdmin: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, user.IsAdmin)
}

func TestDeleteKeepsLastActiveAdmin(t *testing.T) {
	repo := newFakeRepo()
	adminID := repo.seed("admin@example.com", true, true)
	svc := NewService(repo)

	err := svc.Delete(context.Background(), adminID)
	require.ErrorIs(t, err, httpx.ErrValidation)

	inactiveID := repo.seed("retired@example.com", true, false)
	require.NoError(t, svc.Delete(context.Background(), inactiveID))
}

func TestDeleteUnknownUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	err := svc.Delete(context.Background(), 42)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}
