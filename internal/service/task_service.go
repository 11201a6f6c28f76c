package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"task-rooms-api/internal/models"
	"task-rooms-api/internal/realtime"
	"task-rooms-api/internal/store"
)

// Page size bounds for List.
const (
	DefaultPageLimit = 5
	MaxPageLimit     = 100
)

// TaskInput is the payload of a new task. An empty or "0" RoomCode puts the
// task on the caller's personal list.
type TaskInput struct {
	Title       string
	Description string
	Status      string
	RoomCode    string
}

// TaskPatch carries the fields to change; nil fields are kept.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
}

type ListQuery struct {
	RoomCode  string
	Page      int
	Limit     int
	Ascending bool
}

type TaskPage struct {
	Tasks []models.Task
	Total int64
	Page  int
	Limit int
}

type TaskStats struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Done       int64 `json:"done"`
	Total      int64 `json:"total"`
}

type TaskService struct {
	tasks  store.TaskStore
	rooms  *RoomService
	events Notifier
	logger *slog.Logger
}

func NewTaskService(tasks store.TaskStore, rooms *RoomService, events Notifier, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		rooms:  rooms,
		events: events,
		logger: logger.With("component", "task_service"),
	}
}

// scope resolves a room code from a request. A nil room means the personal
// list.
func (s *TaskService) scope(ctx context.Context, userID uint, code string) (*models.Room, error) {
	code = strings.TrimSpace(code)
	if code == "" || code == "0" {
		return nil, nil
	}
	return s.rooms.Authorize(ctx, userID, code)
}

// load fetches a task the caller may see and the code of its room, if any.
func (s *TaskService) load(ctx context.Context, userID, taskID uint) (*models.Task, string, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", newError(ErrNotFound, "Task not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("get task: %w", err)
	}

	if task.IsPersonal() {
		if task.UserID != userID {
			return nil, "", newError(ErrNotFound, "Task not found")
		}
		return task, "", nil
	}

	room, err := s.rooms.rooms.GetRoomByID(ctx, task.RoomID)
	if err != nil {
		return nil, "", fmt.Errorf("get task room: %w", err)
	}
	member, err := s.rooms.rooms.IsMember(ctx, room.ID, userID)
	if err != nil {
		return nil, "", fmt.Errorf("check room membership: %w", err)
	}
	if !member {
		return nil, "", newError(ErrForbidden, "You are not a member of this room.")
	}
	return task, room.Code, nil
}

func parseStatus(raw string) (models.TaskStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return models.StatusTodo, nil
	}
	status, ok := models.ParseTaskStatus(raw)
	if !ok {
		return "", newError(ErrValidation, "Invalid status %q", raw)
	}
	return status, nil
}

func (s *TaskService) Create(ctx context.Context, userID uint, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, newError(ErrValidation, "Title is required and must be a non-empty string")
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	room, err := s.scope(ctx, userID, in.RoomCode)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: in.Description,
		Status:      status,
		UserID:      userID,
		RoomID:      models.NoRoom,
	}
	code := ""
	if room != nil {
		task.RoomID = room.ID
		code = room.Code
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", "task_id", task.ID, "user_id", userID, "room_id", task.RoomID)
	s.events.TaskChanged(realtime.ActionCreate, task, code)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*models.Task, error) {
	task, _, err := s.load(ctx, userID, taskID)
	return task, err
}

func (s *TaskService) Update(ctx context.Context, userID, taskID uint, patch TaskPatch) (*models.Task, error) {
	task, code, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, newError(ErrValidation, "Title is required and must be a non-empty string")
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		status, err := parseStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}

	if err := s.tasks.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	s.events.TaskChanged(realtime.ActionUpdate, task, code)
	return task, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, userID, taskID uint, raw string) (*models.Task, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newError(ErrValidation, "Status is required")
	}
	status, err := parseStatus(raw)
	if err != nil {
		return nil, err
	}
	task, code, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateTaskStatus(ctx, task.ID, status); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	task.Status = status
	s.events.TaskChanged(realtime.ActionUpdate, task, code)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	task, code, err := s.load(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "Task not found")
		}
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info("task deleted", "task_id", task.ID, "user_id", userID)
	s.events.TaskChanged(realtime.ActionDelete, task, code)
	return nil
}

// List returns one page of the personal list or of a room.
func (s *TaskService) List(ctx context.Context, userID uint, q ListQuery) (*TaskPage, error) {
	room, err := s.scope(ctx, userID, q.RoomCode)
	if err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}

	filter := store.TaskFilter{UserID: userID, Page: q.Page, Limit: q.Limit, Ascending: q.Ascending}
	if room != nil {
		filter.RoomID = room.ID
	}
	tasks, total, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return &TaskPage{Tasks: tasks, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Stats counts tasks per status on the personal list or in a room.
func (s *TaskService) Stats(ctx context.Context, userID uint, roomCode string) (*TaskStats, error) {
	room, err := s.scope(ctx, userID, roomCode)
	if err != nil {
		return nil, err
	}
	filter := store.TaskFilter{UserID: userID}
	if room != nil {
		filter.RoomID = room.ID
	}
	counts, err := s.tasks.CountByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	stats := &TaskStats{
		Todo:       counts[models.StatusTodo],
		InProgress: counts[models.StatusInProgress],
		Done:       counts[models.StatusDone],
	}
	stats.Total = stats.Todo + stats.InProgress + stats.Done
	return stats, nil
}
