package services_test

import (
	"strings"
	"testing"
	"time"

	"taskify/server/internal/models"
	"taskify/server/internal/services"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	clock := newTestClock()
	tokens := services.NewTokenManager(testSecret, "taskify-server", 24*time.Hour).WithClock(clock.Now)
	user := testUser()

	raw, expiresAt, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(24*time.Hour), expiresAt)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "taskify-server", claims.Issuer)
	assert.Equal(t, clock.Now().Unix(), claims.IssuedAt.Unix())
}

func TestTokenManager_Expired(t *testing.T) {
	clock := newTestClock()
	tokens := services.NewTokenManager(testSecret, "taskify-server", time.Hour).WithClock(clock.Now)

	raw, _, err := tokens.Issue(testUser())
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = tokens.Verify(raw)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, services.ErrTokenExpired)
}

func TestTokenManager_RejectsTampering(t *testing.T) {
	tokens := services.NewTokenManager(testSecret, "taskify-server", time.Hour)
	raw, _, err := tokens.Issue(testUser())
	require.NoError(t, err)

	other := services.NewTokenManager("another-secret", "taskify-server", time.Hour)
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	wrongIssuer := services.NewTokenManager(testSecret, "someone-else", time.Hour)
	_, err = wrongIssuer.Verify(raw)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	_, err = tokens.Verify(parts[0] + "." + parts[1] + ".AAAA")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = tokens.Verify("not-a-jwt")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	tokens := services.NewTokenManager(testSecret, "taskify-server", time.Hour)

	claims := jwt.MapClaims{
		"userId":   uuid.Must(uuid.NewV4()).String(),
		"username": "alice",
		"iss":      "taskify-server",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestTokenManager_RequiresExpiry(t *testing.T) {
	tokens := services.NewTokenManager(testSecret, "taskify-server", time.Hour)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": uuid.Must(uuid.NewV4()).String(),
		"iss":    "taskify-server",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}
