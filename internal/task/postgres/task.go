package postgres

import (
	"context"
	"errors"

	taskDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/task"
	"github.com/frahmantamala/elementar/internal/task"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.RepositoryAPI {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListVisible(ctx context.Context, viewerID int64, filter task.ListFilter) ([]*taskDatamodel.Task, error) {
	q := r.db.WithContext(ctx).
		Where(r.db.Where("is_public = ?", true).Or("owner_user_id = ?", viewerID)).
		Order("updated_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.OwnerID != 0 {
		q = q.Where("owner_user_id = ?", filter.OwnerID)
	}
	var rows []*taskDatamodel.Task
	err := q.Find(&rows).Error
	return rows, err
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*taskDatamodel.Task, error) {
	var m taskDatamodel.Task
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *taskDatamodel.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&taskDatamodel.Task{}).Where("id = ?", id).Updates(fields).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskDatamodel.Task{})
	return res.RowsAffected > 0, res.Error
}
