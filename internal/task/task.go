package task

import (
	"time"

	taskDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/task"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          int64
	CompanyID   int64
	OwnerUserID int64
	Title       string
	Description *string
	Status      Status
	IsPublic    bool
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VisibleTo is true for public tasks and for the owner's private ones.
func (t *Task) VisibleTo(userID int64) bool {
	return t.IsPublic || t.OwnerUserID == userID
}

func FromDataModel(m *taskDatamodel.Task) *Task {
	return &Task{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		OwnerUserID: m.OwnerUserID,
		Title:       m.Title,
		Description: m.Description,
		Status:      Status(m.Status),
		IsPublic:    m.IsPublic,
		DueDate:     m.DueDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (t *Task) ToResponse() TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		OwnerUserID: t.OwnerUserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		IsPublic:    t.IsPublic,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
