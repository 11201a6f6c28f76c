package realtime

import (
	"log/slog"
	"time"

	"task-rooms-api/internal/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Subject string

const (
	SubjectTask Subject = "task"
	SubjectRoom Subject = "room"
)

// MutationEvent describes a committed change. Payload is a TaskSnapshot for
// task events and a room code for room events.
type MutationEvent struct {
	Action    Action
	Subject   Subject
	Payload   any
	Message   string
	Timestamp time.Time
}

// Dispatcher turns committed mutations into outbound events. Delivery is
// best effort: nothing is retried and a slow client never blocks a publisher.
type Dispatcher struct {
	registry *Registry
	now      func() time.Time
	logger   *slog.Logger
}

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		now:      time.Now,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Publish delivers event to channel and returns the number of connections it
// was queued for.
func (d *Dispatcher) Publish(event MutationEvent, channel string) int {
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now()
	}
	envelope, ok := d.envelope(event)
	if !ok {
		d.logger.Error("unsupported mutation event", "subject", event.Subject, "action", event.Action)
		return 0
	}
	n := d.registry.Broadcast(channel, envelope)
	d.logger.Debug("event published", "event", envelope.Event, "channel", channel, "delivered", n)
	return n
}

func (d *Dispatcher) envelope(event MutationEvent) (Envelope, bool) {
	switch event.Subject {
	case SubjectTask:
		task, ok := event.Payload.(TaskSnapshot)
		if !ok {
			return Envelope{}, false
		}
		return Envelope{Event: EventTaskUpdate, Data: TaskUpdate{
			Action:    event.Action,
			Task:      task,
			Timestamp: formatTimestamp(event.Timestamp),
		}}, true
	case SubjectRoom:
		code, ok := event.Payload.(string)
		if !ok {
			return Envelope{}, false
		}
		if event.Action == ActionCreate {
			return Envelope{Event: EventRoomCreated, Data: RoomCreated{Code: code}}, true
		}
		return Envelope{Event: EventRoomUpdate, Data: RoomUpdate{
			Message:   event.Message,
			Timestamp: formatTimestamp(event.Timestamp),
		}}, true
	}
	return Envelope{}, false
}

// Snapshot copies the fields of task that clients see.
func Snapshot(task *models.Task) TaskSnapshot {
	return TaskSnapshot{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		UserID:      task.UserID,
		RoomID:      task.RoomID,
	}
}

// TaskChanged routes a task event: personal tasks go to the owner's channel,
// room tasks to the room channel only.
func (d *Dispatcher) TaskChanged(action Action, task *models.Task, roomCode string) int {
	channel := UserChannel(task.UserID)
	if !task.IsPersonal() {
		if roomCode == "" {
			d.logger.Warn("room task without room code", "task_id", task.ID, "room_id", task.RoomID)
			return 0
		}
		channel = roomCode
	}
	return d.Publish(MutationEvent{Action: action, Subject: SubjectTask, Payload: Snapshot(task)}, channel)
}

// RoomCreated tells the creator's connections about a new room.
func (d *Dispatcher) RoomCreated(userID uint, code string) int {
	return d.Publish(MutationEvent{Action: ActionCreate, Subject: SubjectRoom, Payload: code}, UserChannel(userID))
}

// RoomUpdated posts message to everyone in the room.
func (d *Dispatcher) RoomUpdated(code, message string) int {
	return d.Publish(MutationEvent{Action: ActionUpdate, Subject: SubjectRoom, Payload: code, Message: message}, code)
}
