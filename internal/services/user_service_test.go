package services

import (
	"context"
	"testing"

	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	user, err := svc.RegisterUser(context.Background(), "marc@example.com", "secret123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "marc@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.HashedPassword)
}

func TestRegisterUser_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	_, err := svc.RegisterUser(context.Background(), "", "secret123")
	assert.Error(t, err)

	_, err = svc.RegisterUser(context.Background(), "not-an-email", "secret123")
	assert.Error(t, err)

	_, err = svc.RegisterUser(context.Background(), "marc@example.com", "")
	assert.Error(t, err)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	_, err := svc.RegisterUser(context.Background(), "marc@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), "marc@example.com", "other456")
	assert.Error(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	registered, err := svc.RegisterUser(context.Background(), "marc@example.com", "secret123")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(context.Background(), "marc@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.AuthenticateUser(context.Background(), "marc@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.AuthenticateUser(context.Background(), "nobody@example.com", "secret123")
	assert.EqualError(t, err, "invalid credentials")
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	user, err := svc.RegisterUser(context.Background(), "marc@example.com", "secret123")
	require.NoError(t, err)

	name := "Marc"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, &name, nil, map[string]interface{}{
		"vision": "run a marathon",
	})
	require.NoError(t, err)
	assert.Equal(t, "Marc", updated.DisplayName)

	// A nil display name leaves the previous value untouched.
	photo := "/uploads/me.png"
	updated, err = svc.UpdateProfile(context.Background(), user.ID, nil, &photo, nil)
	require.NoError(t, err)
	assert.Equal(t, "Marc", updated.DisplayName)
	assert.Equal(t, "/uploads/me.png", updated.PhotoURL)

	fetched, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "run a marathon", fetched.Lifebook["vision"])
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	_, err := svc.GetUser(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
