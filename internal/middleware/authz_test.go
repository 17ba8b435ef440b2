package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskify/server/internal/dto"
	"taskify/server/internal/middleware"
	"taskify/server/internal/models"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newProtectedRouter(tokens *services.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequireAuth(tokens))
	router.GET("/protected", func(c *gin.Context) {
		id, ok := middleware.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id, "username": middleware.CurrentUsername(c)})
	})
	return router
}

func performAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := services.NewTokenManager(testSecret, "taskify-server", time.Hour)
	router := newProtectedRouter(tokens)

	user := &models.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"}
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	w := performAuth(router, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UserID   uuid.UUID `json:"userId"`
		Username string    `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body.UserID)
	assert.Equal(t, "alice", body.Username)
}

func TestRequireAuth_Rejections(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens := services.NewTokenManager(testSecret, "taskify-server", time.Hour).
		WithClock(func() time.Time { return clock })
	router := newProtectedRouter(tokens)

	user := &models.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"}
	expired, _, err := tokens.Issue(user)
	require.NoError(t, err)
	clock = clock.Add(2 * time.Hour)

	forged, _, err := services.NewTokenManager("other-secret", "taskify-server", time.Hour).Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.CodeMissingToken},
		{"basic scheme", "Basic dXNlcjpwYXNz", dto.CodeInvalidTokenFormat},
		{"bearer without token", "Bearer ", dto.CodeInvalidTokenFormat},
		{"garbage token", "Bearer invalid_token", dto.CodeInvalidToken},
		{"wrong secret", "Bearer " + forged, dto.CodeInvalidToken},
		{"expired", "Bearer " + expired, dto.CodeExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performAuth(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestCurrentUserID_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := middleware.CurrentUserID(c)
	assert.False(t, ok)

	c.Set(middleware.ContextUserID, "not-a-uuid")
	_, ok = middleware.CurrentUserID(c)
	assert.False(t, ok)
}
