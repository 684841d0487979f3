package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/config"
	"github.com/leafmark/leafmark/internal/database/users"
	"github.com/leafmark/leafmark/internal/entities"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))
	return NewService(users.NewRepository(db), config.Auth{BcryptCost: 4})
}

func TestService_Register(t *testing.T) {
	svc := setupTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "reader@example.com", "password12345", nil},
		{"missing email", "", "password12345", ErrEmailRequired},
		{"missing password", "reader@example.com", "", ErrPasswordRequired},
		{"bad email", "not-an-email", "password12345", ErrEmailInvalid},
		{"short password", "short@example.com", "tiny", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.NotEmpty(t, user.PasswordHash)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestService_Register_NormalizesEmail(t *testing.T) {
	svc := setupTestService(t)

	user, err := svc.Register("  Reader@Example.COM ", "password12345")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)

	// Same address in a different case counts as a duplicate
	_, err = svc.Register("READER@example.com", "password12345")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Authenticate(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Register("reader@example.com", "password12345")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, err := svc.Authenticate("reader@example.com", "password12345")
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", user.Email)
	})

	t.Run("case-insensitive email", func(t *testing.T) {
		user, err := svc.Authenticate("Reader@Example.com", "password12345")
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("reader@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown account gets same error", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "password12345")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
