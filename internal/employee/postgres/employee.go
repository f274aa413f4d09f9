package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/elementar/internal"
	employeeDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/employee"
	"github.com/frahmantamala/elementar/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) List(ctx context.Context, onlyActive bool) ([]*employeeDatamodel.Employee, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var rows []*employeeDatamodel.Employee
	err := q.Find(&rows).Error
	return rows, err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	var m employeeDatamodel.Employee
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrRegistrationExists
	}
	return err
}

func (r *EmployeeRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Updates(fields).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&employeeDatamodel.Employee{})
	return res.RowsAffected > 0, res.Error
}
