package task

import (
	"strings"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/core/common/validation"
)

const MaxTitleLength = 200

func validStatus(value interface{}) *internal.AppError {
	s, _ := value.(Status)
	if s != "" && !s.Valid() {
		return internal.NewValidationFieldError("status", "status must be one of todo, in_progress, done", internal.ErrCodeValidationFailed)
	}
	return nil
}

// CreateTaskDTO carries neither owner nor company; both come from the
// request scope.
type CreateTaskDTO struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	IsPublic    bool       `json:"is_public"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (d *CreateTaskDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Status == "" {
		d.Status = StatusTodo
	}

	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(MaxTitleLength)
	v.Field("status", d.Status).Custom(validStatus)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateTaskDTO struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status"`
	IsPublic    *bool      `json:"is_public,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (d *UpdateTaskDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)

	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(MaxTitleLength)
	v.Field("status", string(d.Status)).Required()
	v.Field("status", d.Status).Custom(validStatus)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ListFilter narrows the visible tasks of the tenant.
type ListFilter struct {
	Status  Status
	OwnerID int64
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	CompanyID   int64      `json:"company_id"`
	OwnerUserID int64      `json:"owner_user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	IsPublic    bool       `json:"is_public"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}
