package store

import (
	"context"

	"task-rooms-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements UserStore, RoomStore and TaskStore on a gorm.DB.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var (
	_ UserStore = (*GormStore)(nil)
	_ RoomStore = (*GormStore)(nil)
	_ TaskStore = (*GormStore)(nil)
)

// --- Users ---

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	return translate(err, ErrUserNotFound, ErrEmailExists)
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return &user, nil
}

// --- Rooms ---

func (s *GormStore) CreateRoom(ctx context.Context, room *models.Room, creatorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return translate(err, ErrRoomNotFound, ErrRoomCodeExists)
		}
		member := models.RoomMember{RoomID: room.ID, UserID: creatorID}
		if err := tx.Omit(clause.Associations).Create(&member).Error; err != nil {
			return translate(err, ErrRoomNotFound, nil)
		}
		return nil
	})
}

func (s *GormStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err, ErrRoomNotFound, nil)
	}
	return &room, nil
}

func (s *GormStore) GetRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err, ErrRoomNotFound, nil)
	}
	return &room, nil
}

func (s *GormStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) AddMember(ctx context.Context, roomID, userID uint) error {
	member := models.RoomMember{RoomID: roomID, UserID: userID}
	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&member).Error
	return translate(err, ErrRoomNotFound, nil)
}

func (s *GormStore) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) ListMembers(ctx context.Context, roomID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN room_members ON room_members.user_id = users.id").
		Where("room_members.room_id = ?", roomID).
		Order("room_members.joined_at asc, users.id asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// --- Tasks ---

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
	return translate(err, ErrTaskNotFound, nil)
}

func (s *GormStore) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err, ErrTaskNotFound, nil)
	}
	return &task, nil
}

func (s *GormStore) SaveTask(ctx context.Context, task *models.Task) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
	return translate(err, ErrTaskNotFound, nil)
}

func (s *GormStore) UpdateTaskStatus(ctx context.Context, id uint, status models.TaskStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *GormStore) DeleteTask(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *GormStore) scope(ctx context.Context, filter TaskFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Task{})
	if filter.RoomID == models.NoRoom {
		return query.Where("user_id = ? AND room_id = ?", filter.UserID, models.NoRoom)
	}
	return query.Where("room_id = ?", filter.RoomID)
}

func (s *GormStore) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := s.scope(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at desc, id desc"
	if filter.Ascending {
		order = "created_at asc, id asc"
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	q := query.Session(&gorm.Session{}).Order(order)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *GormStore) CountByStatus(ctx context.Context, filter TaskFilter) (map[models.TaskStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}

	var rows []row
	if err := s.scope(ctx, filter).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[models.TaskStatus]int64{
		models.StatusTodo:       0,
		models.StatusInProgress: 0,
		models.StatusDone:       0,
	}
	for _, r := range rows {
		counts[models.TaskStatus(r.Status)] = r.Count
	}
	return counts, nil
}
