package task

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/elementar/internal"
	taskDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/task"
)

// RepositoryAPI runs through the scoped gateway; the request context carries
// the tenant.
type RepositoryAPI interface {
	ListVisible(ctx context.Context, viewerID int64, filter ListFilter) ([]*taskDatamodel.Task, error)
	GetByID(ctx context.Context, id int64) (*taskDatamodel.Task, error)
	Create(ctx context.Context, t *taskDatamodel.Task) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns the public tasks of the tenant plus the caller's own.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Task, error) {
	viewer, err := requireScope(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListVisible(ctx, viewer, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list tasks", err)
	}
	out := make([]*Task, 0, len(rows))
	for _, m := range rows {
		out = append(out, FromDataModel(m))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	viewer, err := requireScope(ctx)
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, id, viewer)
}

func (s *Service) Create(ctx context.Context, dto CreateTaskDTO) (*Task, error) {
	owner, err := requireScope(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m := &taskDatamodel.Task{
		OwnerUserID: owner,
		Title:       dto.Title,
		Description: dto.Description,
		Status:      string(dto.Status),
		IsPublic:    dto.IsPublic,
		DueDate:     dto.DueDate,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.Error("failed to create task", "error", err)
		return nil, internal.NewInternalError("failed to create task", err)
	}

	s.logger.Info("task created", "task_id", m.ID, "company_id", m.CompanyID, "owner_user_id", owner)
	return FromDataModel(m), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateTaskDTO) (*Task, error) {
	viewer, err := requireScope(ctx)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.visible(ctx, id, viewer); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":       dto.Title,
		"description": dto.Description,
		"status":      string(dto.Status),
		"due_date":    dto.DueDate,
	}
	if dto.IsPublic != nil {
		fields["is_public"] = *dto.IsPublic
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, internal.NewInternalError("failed to update task", err)
	}
	return s.visible(ctx, id, viewer)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	viewer, err := requireScope(ctx)
	if err != nil {
		return err
	}
	if _, err := s.visible(ctx, id, viewer); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete task", err)
	}
	if !deleted {
		return internal.ErrTaskNotFound
	}
	s.logger.Info("task deleted", "task_id", id, "user_id", viewer)
	return nil
}

// visible hides other members' private tasks behind the same not found as a
// missing id.
func (s *Service) visible(ctx context.Context, id, viewer int64) (*Task, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load task", err)
	}
	if m == nil {
		return nil, internal.ErrTaskNotFound
	}
	t := FromDataModel(m)
	if !t.VisibleTo(viewer) {
		return nil, internal.ErrTaskNotFound
	}
	return t, nil
}

func requireScope(ctx context.Context) (int64, error) {
	if _, ok := internal.TenantIDFromContext(ctx); !ok {
		return 0, internal.ErrContextRequired
	}
	return internal.UserIDFromContext(ctx), nil
}
