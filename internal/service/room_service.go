package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"task-rooms-api/internal/models"
	"task-rooms-api/internal/realtime"
	"task-rooms-api/internal/roomcode"
	"task-rooms-api/internal/store"
)

// DefaultCreateRetries bounds how often Create regenerates a code after the
// insert hit the unique index.
const DefaultCreateRetries = 5

// Notifier publishes committed mutations to live connections.
type Notifier interface {
	TaskChanged(action realtime.Action, task *models.Task, roomCode string) int
	RoomCreated(userID uint, code string) int
	RoomUpdated(code, message string) int
}

type RoomService struct {
	rooms   store.RoomStore
	codes   *roomcode.Generator
	events  Notifier
	retries int
	logger  *slog.Logger
}

func NewRoomService(rooms store.RoomStore, codes *roomcode.Generator, events Notifier, logger *slog.Logger) *RoomService {
	return &RoomService{
		rooms:   rooms,
		codes:   codes,
		events:  events,
		retries: DefaultCreateRetries,
		logger:  logger.With("component", "room_service"),
	}
}

// Create allocates a fresh code, stores the room with userID as its first
// member and notifies the creator.
func (s *RoomService) Create(ctx context.Context, userID uint) (*models.Room, error) {
	for attempt := 1; attempt <= s.retries; attempt++ {
		code, err := s.codes.Generate(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}

		room := &models.Room{Code: code}
		err = s.rooms.CreateRoom(ctx, room, userID)
		if errors.Is(err, store.ErrRoomCodeExists) {
			s.logger.Warn("room code taken on insert, retrying", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}

		s.logger.Info("room created", "room_id", room.ID, "code", room.Code, "user_id", userID)
		s.events.RoomCreated(userID, room.Code)
		return room, nil
	}
	return nil, newError(ErrConflict, "Could not allocate a room code, please retry.")
}

// Join adds userID to the room identified by code and announces it to the
// room.
func (s *RoomService) Join(ctx context.Context, userID uint, code string) (*models.Room, error) {
	room, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.AddMember(ctx, room.ID, userID); err != nil {
		return nil, fmt.Errorf("add room member: %w", err)
	}

	s.logger.Info("room joined", "code", room.Code, "user_id", userID)
	s.events.RoomUpdated(room.Code, fmt.Sprintf("User %d joined the room", userID))
	return room, nil
}

// Members lists the users of a room the caller belongs to.
func (s *RoomService) Members(ctx context.Context, userID uint, code string) ([]models.User, error) {
	room, err := s.Authorize(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	users, err := s.rooms.ListMembers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	return users, nil
}

// CanAccess reports, as an error, whether userID may follow the room live.
func (s *RoomService) CanAccess(ctx context.Context, userID uint, code string) error {
	_, err := s.Authorize(ctx, userID, code)
	return err
}

// Authorize resolves code to a room userID is a member of.
func (s *RoomService) Authorize(ctx context.Context, userID uint, code string) (*models.Room, error) {
	room, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}
	ok, err := s.rooms.IsMember(ctx, room.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("check room membership: %w", err)
	}
	if !ok {
		return nil, newError(ErrForbidden, "You are not a member of this room.")
	}
	return room, nil
}

func (s *RoomService) find(ctx context.Context, code string) (*models.Room, error) {
	code = roomcode.Normalize(code)
	if !roomcode.Valid(code) {
		return nil, newError(ErrValidation, "Invalid code format.")
	}
	room, err := s.rooms.GetRoomByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "Room not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	return room, nil
}
