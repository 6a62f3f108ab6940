package store

import (
	"context"
	"errors"
	"taskmaster/task-api/internal/model"

	"gorm.io/gorm"
)

// Tasks stores task lists. Every query is scoped to the owning user, a task
// that belongs to someone else looks exactly like a missing one.
type Tasks struct {
	db *gorm.DB
}

func NewTasks(db *gorm.DB) *Tasks {
	return &Tasks{db: db}
}

func (s *Tasks) Create(ctx context.Context, t *model.Task) error {
	return s.db.WithContext(ctx).Create(t).Error
}

// ListByUser returns a user's tasks, newest first
func (s *Tasks) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	tasks := []model.Task{}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&tasks).
		Error

	return tasks, err
}

func (s *Tasks) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	var t model.Task

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&t).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Update writes the given columns to a task owned by userID
func (s *Tasks) Update(ctx context.Context, userID, id string, fields map[string]any) error {
	r := s.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Tasks) Delete(ctx context.Context, userID, id string) error {
	r := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Task{})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
