package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-notification/models"
	"doc-notification/storage"
	"doc-notification/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_EnsureDefaultAccount(t *testing.T) {
	ctx := context.Background()
	_, users, _, _ := newTestServices()

	created, err := users.EnsureDefaultAccount(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = users.EnsureDefaultAccount(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	all, err := users.List(ctx)
	require.NoError(t, err)

	count := 0
	for _, u := range all {
		if u.Email == DefaultEmail {
			count++
			assert.Equal(t, DefaultPassword, u.Password)
			assert.Equal(t, DefaultName, u.Name)
			assert.Equal(t, DefaultSpecialty, u.Specialty)
			assert.NotEmpty(t, u.ID)
		}
	}
	assert.Equal(t, 1, count)

	_, err = users.Authenticate(ctx, DefaultEmail, DefaultPassword)
	assert.NoError(t, err)
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           models.RegisterRequest
		expectedError error
		validate      func(t *testing.T, u *models.User)
	}{
		{
			name: "Success - specialty defaults",
			req:  models.RegisterRequest{Email: "a@clinic.fr", Password: "secret", Name: "Dr. A"},
			validate: func(t *testing.T, u *models.User) {
				assert.Equal(t, UnspecifiedSpecialty, u.Specialty)
				assert.NotEmpty(t, u.ID)
				assert.Equal(t, time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC), u.CreatedAt)
			},
		},
		{
			name: "Success - specialty kept",
			req:  models.RegisterRequest{Email: "b@clinic.fr", Password: "secret", Name: "Dr. B", Specialty: "Cardiologie"},
			validate: func(t *testing.T, u *models.User) {
				assert.Equal(t, "Cardiologie", u.Specialty)
			},
		},
		{
			name:          "Error - duplicate email",
			req:           models.RegisterRequest{Email: DefaultEmail, Password: "secret", Name: "Dup"},
			expectedError: ErrConflict,
		},
		{
			name:          "Error - short password",
			req:           models.RegisterRequest{Email: "c@clinic.fr", Password: "123", Name: "Dr. C"},
			expectedError: ErrValidation,
		},
		{
			name:          "Error - bad email",
			req:           models.RegisterRequest{Email: "nope", Password: "1234", Name: "Dr. C"},
			expectedError: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			_, users, _, _ := newTestServices()
			users.now = fixedClock(time.Date(2025, 10, 18, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600)))
			_, err := users.EnsureDefaultAccount(ctx)
			require.NoError(t, err)

			u, err := users.Register(ctx, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			tt.validate(t, u)
		})
	}
}

func TestUserService_Register_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	_, users, _, _ := newTestServices()

	_, err := users.Register(ctx, models.RegisterRequest{Email: "doe@clinic.fr", Password: "1234", Name: "Doe"})
	require.NoError(t, err)
	_, err = users.Register(ctx, models.RegisterRequest{Email: "Doe@clinic.fr", Password: "1234", Name: "Doe"})
	require.NoError(t, err)
	_, err = users.Register(ctx, models.RegisterRequest{Email: "doe@clinic.fr", Password: "5678", Name: "Again"})
	assert.ErrorIs(t, err, ErrConflict)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	_, users, _, _ := newTestServices()
	_, err := users.Register(ctx, models.RegisterRequest{Email: "doe@clinic.fr", Password: "1234", Name: "Doe"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"Exact match", "doe@clinic.fr", "1234", false},
		{"Wrong password", "doe@clinic.fr", "0000", true},
		{"Unknown email", "nobody@clinic.fr", "1234", true},
		{"Email case differs", "DOE@clinic.fr", "1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := users.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrAuth))
				assert.Equal(t, ErrAuth, err)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Doe", u.Name)
			}
		})
	}
}

func TestUserService_Session(t *testing.T) {
	ctx := context.Background()
	store, users, _, _ := newTestServices()
	_, err := users.EnsureDefaultAccount(ctx)
	require.NoError(t, err)

	t.Run("No session", func(t *testing.T) {
		_, err := users.CurrentUser(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Login sets session without password", func(t *testing.T) {
		_, err := users.Login(ctx, DefaultEmail, DefaultPassword)
		require.NoError(t, err)

		var raw map[string]any
		found, err := store.Get(ctx, CurrentUserKey, &raw)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, DefaultEmail, raw["email"])
		assert.NotContains(t, raw, "password")

		current, err := users.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultEmail, current.Email)
		assert.Equal(t, DefaultPassword, current.Password)
	})

	t.Run("Failed login leaves session alone", func(t *testing.T) {
		_, err := users.Login(ctx, DefaultEmail, "wrong")
		assert.ErrorIs(t, err, ErrAuth)

		current, err := users.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultEmail, current.Email)
	})

	t.Run("Pointer is resolved against the directory", func(t *testing.T) {
		// A stale copy in the pointer does not win over the directory
		require.NoError(t, store.Set(ctx, CurrentUserKey, models.PublicUser{Email: DefaultEmail, Name: "Stale"}))

		current, err := users.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultName, current.Name)
	})

	t.Run("Dangling pointer is cleared", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, CurrentUserKey, models.PublicUser{Email: "ghost@clinic.fr"}))

		_, err := users.CurrentUser(ctx)
		assert.ErrorIs(t, err, ErrNotFound)

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, CurrentUserKey)
	})

	t.Run("Logout clears session", func(t *testing.T) {
		_, err := users.Login(ctx, DefaultEmail, DefaultPassword)
		require.NoError(t, err)
		require.NoError(t, users.Logout(ctx))
		require.NoError(t, users.Logout(ctx))

		_, err = users.CurrentUser(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	store, users, _, _ := newTestServices()
	_, err := users.EnsureDefaultAccount(ctx)
	require.NoError(t, err)
	_, err = users.Register(ctx, models.RegisterRequest{Email: "other@clinic.fr", Password: "1234", Name: "Other"})
	require.NoError(t, err)
	_, err = users.Login(ctx, DefaultEmail, DefaultPassword)
	require.NoError(t, err)

	t.Run("Merges provided fields and refreshes session", func(t *testing.T) {
		u, err := users.UpdateProfile(ctx, DefaultEmail, models.ProfileUpdate{
			Name:  strPtr("Dr. Martin"),
			Phone: strPtr("06 12 34 56 78"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Martin", u.Name)
		assert.Equal(t, DefaultSpecialty, u.Specialty)
		assert.Equal(t, "06 12 34 56 78", u.Phone)
		assert.Equal(t, DefaultPassword, u.Password)

		var pointer models.PublicUser
		_, err = store.Get(ctx, CurrentUserKey, &pointer)
		require.NoError(t, err)
		assert.Equal(t, "Dr. Martin", pointer.Name)
	})

	t.Run("Other user does not touch session", func(t *testing.T) {
		_, err := users.UpdateProfile(ctx, "other@clinic.fr", models.ProfileUpdate{Specialty: strPtr("Pédiatrie")})
		require.NoError(t, err)

		var pointer models.PublicUser
		_, err = store.Get(ctx, CurrentUserKey, &pointer)
		require.NoError(t, err)
		assert.Equal(t, DefaultEmail, pointer.Email)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := users.UpdateProfile(ctx, "ghost@clinic.fr", models.ProfileUpdate{Name: strPtr("Ghost")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Blank name rejected", func(t *testing.T) {
		_, err := users.UpdateProfile(ctx, DefaultEmail, models.ProfileUpdate{Name: strPtr(" ")})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUserService_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	_, users, _, _ := newTestServices()
	_, err := users.EnsureDefaultAccount(ctx)
	require.NoError(t, err)

	t.Run("Keeps stored password when import has none", func(t *testing.T) {
		err := users.ReplaceAll(ctx, []models.User{
			{Email: DefaultEmail, Name: "Imported"},
			{Email: "new@clinic.fr", Name: "New"},
		})
		require.NoError(t, err)

		all, err := users.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Imported", all[0].Name)
		assert.Equal(t, DefaultPassword, all[0].Password)
		assert.NotEmpty(t, all[1].ID)

		_, err = users.Authenticate(ctx, "new@clinic.fr", "")
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("Rejects duplicate emails", func(t *testing.T) {
		err := users.ReplaceAll(ctx, []models.User{{Email: "x@y.z"}, {Email: "x@y.z"}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Rejects missing email", func(t *testing.T) {
		err := users.ReplaceAll(ctx, []models.User{{Name: "No email"}})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUserService_StorageFailure(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockStore)
	failure := &storage.Error{Op: "set", Key: UsersKey, Err: errors.New("disk full")}

	mockStore.On("Get", mock.Anything, UsersKey, mock.Anything).Return(false, nil)
	mockStore.On("Set", mock.Anything, UsersKey, mock.Anything).Return(failure)

	users := NewUserService(mockStore, validator.New(), testLogger())

	_, err := users.Register(ctx, models.RegisterRequest{Email: "a@b.co", Password: "1234", Name: "A"})
	assert.ErrorIs(t, err, ErrStorage)

	created, err := users.EnsureDefaultAccount(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	assert.False(t, created)

	mockStore.AssertExpectations(t)
}
