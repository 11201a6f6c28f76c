package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"task-rooms-api/internal/models"
	"task-rooms-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskListBody struct {
	Tasks []models.Task `json:"tasks"`
	Count int           `json:"count"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Sort  string        `json:"sort"`
}

func TestRoomCodeUnmarshal(t *testing.T) {
	cases := map[string]RoomCode{
		`{"room_code":"ABC123"}`: "ABC123",
		`{"room_code":0}`:        "0",
		`{"room_code":null}`:     "",
		`{}`:                     "",
	}
	for in, want := range cases {
		var req CreateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(in), &req), in)
		assert.Equal(t, want, req.RoomCode, in)
	}

	var req CreateTaskRequest
	require.Error(t, json.Unmarshal([]byte(`{"room_code":true}`), &req))
}

func TestCreateTask(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.user(t, 1)

	t.Run("personal with numeric room code", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/tasks", map[string]any{
			"title": "Write docs", "description": "README", "room_code": 0,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		task := decode[models.Task](t, w)
		assert.NotZero(t, task.ID)
		assert.Equal(t, "Write docs", task.Title)
		assert.Equal(t, models.StatusTodo, task.Status)
		assert.Equal(t, uint(1), task.UserID)
		assert.True(t, task.IsPersonal())
	})

	t.Run("legacy status spelling", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/tasks", map[string]any{
			"title": "Ship", "status": "In Progress",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, models.StatusInProgress, decode[models.Task](t, w).Status)
	})

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"blank title", map[string]any{"title": "   "}, http.StatusBadRequest},
		{"unknown status", map[string]any{"title": "x", "status": "blocked"}, http.StatusBadRequest},
		{"malformed room code", map[string]any{"title": "x", "room_code": "abc"}, http.StatusBadRequest},
		{"unknown room", map[string]any{"title": "x", "room_code": "ZZZZZ9"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/tasks", tt.body, token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestTaskEndpointsRequireToken(t *testing.T) {
	app := newTestApp(t, nil)
	for _, path := range []string{"/api/tasks", "/api/tasks/1", "/api/stats"} {
		w := app.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := app.do(t, http.MethodGet, "/api/tasks", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetTasksPagination(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.user(t, 1)
	other := app.user(t, 2)

	for i := 1; i <= 7; i++ {
		w := app.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": fmt.Sprintf("Task %d", i)}, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := app.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "Not yours"}, other)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodGet, "/api/tasks", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[taskListBody](t, w)
	assert.Equal(t, int64(7), first.Total)
	assert.Equal(t, service.DefaultPageLimit, first.Count)
	assert.Equal(t, "desc", first.Sort)
	assert.Equal(t, "Task 7", first.Tasks[0].Title)

	w = app.do(t, http.MethodGet, "/api/tasks?page=2&limit=5&sort=asc", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[taskListBody](t, w)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, "asc", second.Sort)
	assert.Equal(t, "Task 6", second.Tasks[0].Title)

	w = app.do(t, http.MethodGet, "/api/tasks?limit=1000&page=-3", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	clamped := decode[taskListBody](t, w)
	assert.Equal(t, service.MaxPageLimit, clamped.Limit)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, 7, clamped.Count)
}

func TestTaskLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.user(t, 1)
	stranger := app.user(t, 2)

	w := app.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "Draft"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Task](t, w).ID
	path := fmt.Sprintf("/api/tasks/%d", id)

	w = app.do(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Draft", decode[models.Task](t, w).Title)

	w = app.do(t, http.MethodGet, path, nil, stranger)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodPut, path, map[string]any{"title": "Final", "description": "v2"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Task](t, w)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "v2", updated.Description)
	assert.Equal(t, models.StatusTodo, updated.Status)

	w = app.do(t, http.MethodPut, path, map[string]any{"title": ""}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPatch, path+"/status", map[string]any{}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status is required", decode[errorBody](t, w).Error)

	w = app.do(t, http.MethodPatch, path+"/status", map[string]any{"status": "done"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusDone, decode[models.Task](t, w).Status)

	w = app.do(t, http.MethodGet, "/api/stats", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[service.TaskStats](t, w)
	assert.Equal(t, service.TaskStats{Done: 1, Total: 1}, stats)

	w = app.do(t, http.MethodDelete, path, nil, stranger)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task deleted successfully", decode[map[string]any](t, w)["message"])

	w = app.do(t, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskIDValidation(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.user(t, 1)
	for _, id := range []string{"abc", "0", "-1"} {
		w := app.do(t, http.MethodGet, "/api/tasks/"+id, nil, token)
		require.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Equal(t, "Task ID must be a positive integer", decode[errorBody](t, w).Error)
	}
}

func TestRoomTasksRequireMembership(t *testing.T) {
	app := newTestApp(t, nil)
	owner := app.user(t, 1)
	outsider := app.user(t, 2)

	w := app.do(t, http.MethodPost, "/api/rooms", nil, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	code := decode[map[string]string](t, w)["code"]

	w = app.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "Shared", "room_code": code}, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode[models.Task](t, w)
	assert.False(t, task.IsPersonal())

	w = app.do(t, http.MethodGet, "/api/tasks?room_code="+code, nil, outsider)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil, outsider)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/api/rooms/join", map[string]string{"code": code}, outsider)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), map[string]string{"status": "inProgress"}, outsider)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/tasks?room_code="+code, nil, outsider)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[taskListBody](t, w)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, models.StatusInProgress, list.Tasks[0].Status)

	// personal lists stay separate from the room
	w = app.do(t, http.MethodGet, "/api/tasks", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[taskListBody](t, w).Total)

	w = app.do(t, http.MethodGet, "/api/stats?room_code="+code, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[service.TaskStats](t, w).InProgress)
}
