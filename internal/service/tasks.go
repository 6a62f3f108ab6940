package service

import (
	"context"
	"errors"
	"strings"
	"taskmaster/task-api/internal/model"
	"taskmaster/task-api/internal/store"
	"taskmaster/task-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)
	Get(ctx context.Context, userID, id string) (*model.Task, error)
	Update(ctx context.Context, userID, id string, fields map[string]any) error
	Delete(ctx context.Context, userID, id string) error
}

type TaskInput struct {
	Title     string `json:"title"`
	Priority  string `json:"priority"`
	DueDate   string `json:"dueDate"`
	Completed bool   `json:"completed"`
}

// TaskPatch only touches the fields that are set
type TaskPatch struct {
	Title     *string `json:"title"`
	Priority  *string `json:"priority"`
	DueDate   *string `json:"dueDate"`
	Completed *bool   `json:"completed"`
}

type Tasks struct {
	tasks TaskStore
}

func NewTasks(tasks TaskStore) *Tasks {
	return &Tasks{tasks: tasks}
}

func (s *Tasks) Add(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	dueDate := strings.TrimSpace(in.DueDate)

	if err := validators.TaskValidator(title, in.Priority, dueDate); err != nil {
		return nil, invalid(err)
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	id, err := gonanoid.Generate(idCharset, idLength)
	if err != nil {
		return nil, internalErr("generate task id", err)
	}

	t := &model.Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Priority:  priority,
		DueDate:   dueDate,
		Completed: in.Completed,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, internalErr("create task", err)
	}

	return t, nil
}

func (s *Tasks) List(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalErr("list tasks", err)
	}

	return tasks, nil
}

func (s *Tasks) Update(ctx context.Context, userID, id string, p TaskPatch) (*model.Task, error) {
	current, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	title, priority, dueDate := current.Title, current.Priority, current.DueDate

	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
		fields["title"] = title
	}

	if p.Priority != nil {
		priority = *p.Priority
		fields["priority"] = priority
	}

	if p.DueDate != nil {
		dueDate = strings.TrimSpace(*p.DueDate)
		fields["due_date"] = dueDate
	}

	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}

	if len(fields) == 0 {
		return nil, invalid(errors.New("nothing to update"))
	}

	if priority == "" {
		return nil, invalid(validators.ErrPriorityInvalid)
	}

	if err := validators.TaskValidator(title, priority, dueDate); err != nil {
		return nil, invalid(err)
	}

	err = s.tasks.Update(ctx, userID, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, internalErr("update task", err)
	}

	return s.get(ctx, userID, id)
}

func (s *Tasks) Delete(ctx context.Context, userID, id string) error {
	err := s.tasks.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return internalErr("delete task", err)
	}

	return nil
}

func (s *Tasks) get(ctx context.Context, userID, id string) (*model.Task, error) {
	t, err := s.tasks.Get(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, internalErr("find task", err)
	}

	return t, nil
}
