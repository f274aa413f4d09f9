package employee_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/elementar/internal"
	employeeDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/employee"
	"github.com/frahmantamala/elementar/internal/employee"
)

// mockEmployeeRepository keys rows by tenant the way the gateway would.
type mockEmployeeRepository struct {
	rows        map[int64]*employeeDatamodel.Employee
	nextID      int64
	createError error
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{rows: make(map[int64]*employeeDatamodel.Employee), nextID: 1}
}

func tenantOf(ctx context.Context) int64 {
	id, _ := internal.TenantIDFromContext(ctx)
	return id
}

func (m *mockEmployeeRepository) List(ctx context.Context, onlyActive bool) ([]*employeeDatamodel.Employee, error) {
	var out []*employeeDatamodel.Employee
	for _, e := range m.rows {
		if e.CompanyID != tenantOf(ctx) || (onlyActive && !e.IsActive) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	e, ok := m.rows[id]
	if !ok || e.CompanyID != tenantOf(ctx) {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *mockEmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	if m.createError != nil {
		return m.createError
	}
	e.ID = m.nextID
	e.CompanyID = tenantOf(ctx)
	m.nextID++
	m.rows[e.ID] = e
	return nil
}

func (m *mockEmployeeRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	e, ok := m.rows[id]
	if !ok || e.CompanyID != tenantOf(ctx) {
		return nil
	}
	if name, ok := fields["name"].(string); ok {
		e.Name = name
	}
	if active, ok := fields["is_active"].(bool); ok {
		e.IsActive = active
	}
	if dismissed, ok := fields["dismissed_at"].(*time.Time); ok {
		e.DismissedAt = dismissed
	}
	return nil
}

func (m *mockEmployeeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	e, ok := m.rows[id]
	if !ok || e.CompanyID != tenantOf(ctx) {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func tenantCtx(tenantID int64) context.Context {
	return internal.ContextWithScope(context.Background(), internal.Scope{SubjectID: 1, TenantID: &tenantID})
}

var _ = Describe("Employee Service", func() {
	var (
		repo    *mockEmployeeRepository
		service *employee.Service
		admit   time.Time
	)

	BeforeEach(func() {
		repo = newMockEmployeeRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = employee.NewService(repo, logger)
		admit = time.Now().AddDate(-1, 0, 0)
	})

	create := func(tenantID int64, registration string) *employee.Employee {
		e, err := service.Create(tenantCtx(tenantID), employee.CreateEmployeeDTO{
			Name: "Employee " + registration, Registration: registration, AdmittedAt: admit,
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	It("refuses every operation without a tenant", func() {
		ctx := context.Background()
		_, err := service.List(ctx, false)
		Expect(err).To(MatchError(internal.ErrContextRequired))
		_, err = service.Get(ctx, 1)
		Expect(err).To(MatchError(internal.ErrContextRequired))
		_, err = service.Create(ctx, employee.CreateEmployeeDTO{Name: "A", Registration: "1", AdmittedAt: admit})
		Expect(err).To(MatchError(internal.ErrContextRequired))
		Expect(service.Delete(ctx, 1)).To(MatchError(internal.ErrContextRequired))
	})

	Describe("Create", func() {
		It("creates an active employee in the current tenant", func() {
			e := create(1, " 0001 ")
			Expect(e.Registration).To(Equal("0001"))
			Expect(e.CompanyID).To(Equal(int64(1)))
			Expect(e.IsActive).To(BeTrue())
		})

		It("rejects an admission date in the future", func() {
			_, err := service.Create(tenantCtx(1), employee.CreateEmployeeDTO{
				Name: "Future", Registration: "9", AdmittedAt: time.Now().Add(48 * time.Hour),
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("passes registration conflicts through", func() {
			repo.createError = internal.ErrRegistrationExists
			_, err := service.Create(tenantCtx(1), employee.CreateEmployeeDTO{Name: "A", Registration: "1", AdmittedAt: admit})
			Expect(err).To(MatchError(internal.ErrRegistrationExists))
		})

		It("wraps unexpected repository failures", func() {
			repo.createError = errors.New("connection reset")
			_, err := service.Create(tenantCtx(1), employee.CreateEmployeeDTO{Name: "A", Registration: "1", AdmittedAt: admit})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("reads", func() {
		It("does not see employees of another tenant", func() {
			other := create(2, "B-1")
			_, err := service.Get(tenantCtx(1), other.ID)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("filters inactive employees on request", func() {
			create(1, "A-1")
			e := create(1, "A-2")
			inactive := false
			_, err := service.Update(tenantCtx(1), e.ID, employee.UpdateEmployeeDTO{Name: e.Name, AdmittedAt: admit, IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())

			all, err := service.List(tenantCtx(1), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			active, err := service.List(tenantCtx(1), true)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
		})
	})

	Describe("Update", func() {
		It("rejects a dismissal before admission", func() {
			e := create(1, "A-1")
			before := admit.AddDate(0, 0, -1)
			_, err := service.Update(tenantCtx(1), e.ID, employee.UpdateEmployeeDTO{Name: "A", AdmittedAt: admit, DismissedAt: &before})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("does not update employees of another tenant", func() {
			other := create(2, "B-1")
			_, err := service.Update(tenantCtx(1), other.ID, employee.UpdateEmployeeDTO{Name: "Renamed", AdmittedAt: admit})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
			Expect(repo.rows[other.ID].Name).To(Equal("Employee B-1"))
		})
	})

	Describe("Delete", func() {
		It("deletes within the tenant", func() {
			e := create(1, "A-1")
			Expect(service.Delete(tenantCtx(1), e.ID)).To(Succeed())
			Expect(service.Delete(tenantCtx(1), e.ID)).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("does not delete employees of another tenant", func() {
			other := create(2, "B-1")
			Expect(service.Delete(tenantCtx(1), other.ID)).To(MatchError(internal.ErrEmployeeNotFound))
			Expect(repo.rows).To(HaveKey(other.ID))
		})
	})
})
