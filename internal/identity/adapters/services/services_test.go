package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cryptobcrypt "golang.org/x/crypto/bcrypt"

	"useridentity/internal/identity/adapters/services"
	"useridentity/internal/identity/domain/entities"
)

//nolint:gosec
const (
	msgNoErrorValidPassword        = "should not return error for valid password"
	msgHashNotEmpty                = "hash should not be empty"
	msgHashVerifiable              = "created hash should be verifiable"
	msgDifferentHashesSamePassword = "hashes of same password should differ due to salt"
	msgEmptyPasswordError          = "should return error for empty password"
)

func TestHash(t *testing.T) {
	service := services.NewBcrypt(cryptobcrypt.MinCost)
	ctx := context.Background()

	t.Run("короткий пароль допустим", func(t *testing.T) {
		hash, err := service.Hash(ctx, "secret")

		require.NoError(t, err, msgNoErrorValidPassword)
		assert.NotEmpty(t, hash, msgHashNotEmpty)
		assert.NoError(t, cryptobcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")), msgHashVerifiable)
	})

	t.Run("соль делает хеши различными", func(t *testing.T) {
		first, err := service.Hash(ctx, "secret")
		require.NoError(t, err)
		second, err := service.Hash(ctx, "secret")
		require.NoError(t, err)

		assert.NotEqual(t, first, second, msgDifferentHashesSamePassword)
	})

	t.Run("пустой пароль", func(t *testing.T) {
		hash, err := service.Hash(ctx, "")

		require.Error(t, err, msgEmptyPasswordError)
		assert.ErrorIs(t, err, entities.ErrEmptyPassword)
		assert.Empty(t, hash)
	})

	t.Run("слишком длинный пароль", func(t *testing.T) {
		hash, err := service.Hash(ctx, strings.Repeat("x", 80))

		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrHashingFailed)
		assert.True(t, entities.IsDomainError(err, entities.ErrCodeInternal))
		assert.Empty(t, hash)
	})
}

func TestVerify(t *testing.T) {
	service := services.NewBcrypt(cryptobcrypt.MinCost)
	ctx := context.Background()

	hash, err := service.Hash(ctx, "secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{name: "верный пароль", password: "secret", hash: hash, want: true},
		{name: "неверный пароль", password: "wrong", hash: hash, want: false},
		{name: "пустой пароль", password: "", hash: hash, wantErr: true},
		{name: "пустой хеш", password: "secret", hash: "", wantErr: true},
		{name: "поврежденный хеш", password: "secret", hash: "not-a-bcrypt-hash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := service.Verify(ctx, tt.password, tt.hash)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestNewBcrypt_InvalidCost(t *testing.T) {
	for _, cost := range []int{0, cryptobcrypt.MaxCost + 1} {
		service := services.NewBcrypt(cost)

		hash, err := service.Hash(context.Background(), "secret")
		require.NoError(t, err)

		got, err := cryptobcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, cryptobcrypt.DefaultCost, got)
	}
}

func TestServiceFactory(t *testing.T) {
	factory := services.NewServiceFactory(cryptobcrypt.MinCost)

	require.NotNil(t, factory.PasswordService())
	assert.Same(t, factory.PasswordService(), factory.PasswordService())
}
