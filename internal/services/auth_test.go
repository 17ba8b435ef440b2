package services_test

import (
	"context"
	"testing"
	"time"

	"taskify/server/internal/models"
	"taskify/server/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*services.AuthServiceImpl, *services.TokenManager) {
	users, _, _ := newRepositories(t)
	tokens := services.NewTokenManager(testSecret, "taskify-server", 24*time.Hour)
	return services.NewAuthService(users, tokens, testCost), tokens
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string][]string)
	for _, f := range verr.Fields {
		fields[f.Field] = append(fields[f.Field], f.Message)
	}
	return fields
}

func TestRegister_StoresOnlyHash(t *testing.T) {
	users, _, pool := newRepositories(t)
	auth := services.NewAuthService(users, services.NewTokenManager(testSecret, "iss", time.Hour), testCost)

	user, err := auth.Register(context.Background(), "  alice  ", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	var stored models.User
	require.NoError(t, pool.DB.Where("username = ?", "alice").First(&stored).Error)
	assert.NotEqual(t, "Secret1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Secret1")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "Secret1")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "alice", "Other2pass")
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
}

func TestRegister_Validation(t *testing.T) {
	auth, _ := newAuthService(t)

	tests := []struct {
		name     string
		username string
		password string
		fields   []string
	}{
		{"short username", "al", "Secret1", []string{"username"}},
		{"long username", "abcdefghijklmnopqrstu", "Secret1", []string{"username"}},
		{"bad characters", "ali-ce", "Secret1", []string{"username"}},
		{"short password", "alice", "Se1", []string{"password"}},
		{"no digit", "alice", "Secrets", []string{"password"}},
		{"no upper", "alice", "secret1", []string{"password"}},
		{"no lower", "alice", "SECRET1", []string{"password"}},
		{"non-ascii letters", "alice", "ΩωωωωΩ1", []string{"password"}},
		{"non-ascii digit", "alice", "Abcdef١", []string{"password"}},
		{"both fields", "a!", "x", []string{"username", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.username, tt.password)
			fields := fieldsOf(t, err)
			assert.Len(t, fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestRegister_BoundaryLengthsAccepted(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "abc", "Abcde1")
	assert.NoError(t, err)

	_, err = auth.Register(ctx, "abcdefghijklmnopqrst", "Abcdefghijklmnopqrstuvwxyz1234567890abcdefghijklmn")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	auth, tokens := newAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "alice", "Secret1")
	require.NoError(t, err)

	result, err := auth.Authenticate(ctx, "alice", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), result.ExpiresAt, time.Minute)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthenticate_Failures(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "Secret1")
	require.NoError(t, err)

	result, err := auth.Authenticate(ctx, "alice", "Wrong99")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Nil(t, result)

	result, err = auth.Authenticate(ctx, "nobody", "Secret1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Nil(t, result)

	_, err = auth.Authenticate(ctx, "al", "x")
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}
