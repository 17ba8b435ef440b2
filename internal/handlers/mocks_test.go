package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"taskify/server/internal/dto"
	"taskify/server/internal/middleware"
	"taskify/server/internal/models"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, username, password)
	result, _ := args.Get(0).(*services.AuthResult)
	return result, args.Error(1)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	args := m.Called(ctx, ownerID)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, ownerID uuid.UUID, input services.CreateTaskInput) (*models.Task, error) {
	args := m.Called(ctx, ownerID, input)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, input services.UpdateTaskInput) (*models.Task, error) {
	args := m.Called(ctx, ownerID, taskID, input)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*services.DeletedTask, error) {
	args := m.Called(ctx, ownerID, taskID)
	deleted, _ := args.Get(0).(*services.DeletedTask)
	return deleted, args.Error(1)
}

// withUser stands in for RequireAuth.
func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUsername, "alice")
		c.Next()
	}
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func fieldMessages(resp dto.ErrorResponse) map[string]string {
	out := make(map[string]string)
	for _, f := range resp.Errors {
		out[f.Field] = f.Message
	}
	return out
}
