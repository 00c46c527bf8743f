package delivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskflow-backend/internal/task/domain"
	"taskflow-backend/internal/task/repository"
	"taskflow-backend/internal/task/usecase"
	"taskflow-backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewGormTaskRepository(database.NewTestConnection(t, &domain.Task{}))
	h := NewTaskHandler(usecase.NewTaskUsecase(repo, 30*time.Minute, nil), nil)

	r := gin.New()
	tasks := r.Group("/api/tasks", func(c *gin.Context) {
		c.Set("userID", c.GetHeader("X-Test-User"))
	})
	tasks.GET("", h.GetTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/:id", h.GetTaskByID)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.PATCH("/:id/status", h.UpdateTaskStatus)
	tasks.DELETE("/:id", h.DeleteTask)
	return r
}

func do(r *gin.Engine, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestTaskLifecycle(t *testing.T) {
	r := newRouter(t)
	due := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Second)

	w := do(r, http.MethodPost, "/api/tasks", "alice", gin.H{
		"title": "Submit report", "priority": "high", "dueDate": due.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	decode(t, w, &created)
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "alice", created["user"])
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, false, created["reminderSent"])
	assert.Equal(t, due.Add(-30*time.Minute).Format(time.RFC3339), created["reminderTime"])

	w = do(r, http.MethodGet, "/api/tasks", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	decode(t, w, &list)
	assert.Len(t, list, 1)

	w = do(r, http.MethodPut, "/api/tasks/"+id, "alice", gin.H{"description": "quarterly"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, "Submit report", updated["title"])
	assert.Equal(t, "quarterly", updated["description"])

	w = do(r, http.MethodPatch, "/api/tasks/"+id+"/status", "alice", gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/api/tasks/"+id, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/tasks/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTask_RequiresTitleAndPriority(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/tasks", "alice", gin.H{"title": "No priority"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Title and priority required", body["message"])

	w = do(r, http.MethodPost, "/api/tasks", "alice", gin.H{"title": "x", "priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOtherUsersTaskIsForbidden(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/tasks", "alice", gin.H{"title": "Private", "priority": "low"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	decode(t, w, &created)
	id := created["_id"].(string)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w = do(r, method, "/api/tasks/"+id, "mallory", gin.H{"title": "pwned"})
		assert.Equal(t, http.StatusForbidden, w.Code, method)
	}
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodGet, "/api/tasks", "nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
