package company_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/company"
	companyPostgres "github.com/frahmantamala/elementar/internal/company/postgres"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
	"github.com/frahmantamala/elementar/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func callerCtx(userID int64, tenantID *int64) context.Context {
	return internal.ContextWithScope(context.Background(), internal.Scope{SubjectID: userID, TenantID: tenantID})
}

var _ = Describe("Company Service", func() {
	var (
		db        *gorm.DB
		publisher *recordingPublisher
		service   *company.Service
		owner     roleDatamodel.Role
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&companyDatamodel.Plan{},
			&companyDatamodel.Company{},
			&roleDatamodel.Permission{},
			&roleDatamodel.Role{},
			&membershipDatamodel.Membership{},
		)).To(Succeed())

		owner = roleDatamodel.Role{Name: "Admin"}
		Expect(db.Create(&owner).Error).To(Succeed())

		publisher = &recordingPublisher{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = company.NewService(companyPostgres.NewCompanyRepository(db), publisher, "Admin", slogger)
	})

	Describe("Create", func() {
		It("creates the company, the owner membership and the manager link", func() {
			c, err := service.Create(callerCtx(7, nil), company.CreateCompanyDTO{Name: "  MATRIZ "})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("MATRIZ"))
			Expect(c.IsActive).To(BeTrue())
			Expect(*c.ManagerID).To(Equal(int64(7)))
			Expect(c.DominioRubric).To(Equal(companyDatamodel.DefaultDominioRubric))

			var m membershipDatamodel.Membership
			Expect(db.Where("user_id = ? AND company_id = ?", 7, c.ID).First(&m).Error).To(Succeed())
			Expect(m.RoleID).To(Equal(owner.ID))
			Expect(m.IsActive).To(BeTrue())

			Expect(publisher.types()).To(Equal([]string{events.EventTypeCompanyCreated, events.EventTypeMembershipCreated}))
		})

		It("rolls back when the owner role is scoped elsewhere", func() {
			other := companyDatamodel.Company{Name: "OTHER", IsActive: true, DominioRubric: "297"}
			Expect(db.Create(&other).Error).To(Succeed())
			Expect(db.Create(&roleDatamodel.RoleCompany{RoleID: owner.ID, CompanyID: other.ID}).Error).To(Succeed())

			_, err := service.Create(callerCtx(7, nil), company.CreateCompanyDTO{Name: "NEW"})
			Expect(err).To(MatchError(internal.ErrRoleOutOfScope))

			var count int64
			Expect(db.Model(&companyDatamodel.Company{}).Where("name = ?", "NEW").Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
			Expect(db.Model(&membershipDatamodel.Membership{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
			Expect(publisher.types()).To(BeEmpty())
		})

		It("rejects an unknown plan", func() {
			planID := int64(42)
			_, err := service.Create(callerCtx(7, nil), company.CreateCompanyDTO{Name: "NEW", PlanID: &planID})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("validates the name", func() {
			_, err := service.Create(callerCtx(7, nil), company.CreateCompanyDTO{Name: " "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("current company", func() {
		var tenantID int64

		BeforeEach(func() {
			c, err := service.Create(callerCtx(7, nil), company.CreateCompanyDTO{Name: "MATRIZ"})
			Expect(err).NotTo(HaveOccurred())
			tenantID = c.ID
		})

		It("requires a tenant", func() {
			_, err := service.GetCurrent(callerCtx(7, nil))
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})

		It("renames and inactivates the tenant", func() {
			ctx := callerCtx(7, &tenantID)
			c, err := service.UpdateCurrent(ctx, company.UpdateCompanyDTO{Name: "MATRIZ SA"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("MATRIZ SA"))

			c, err = service.InactivateCurrent(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.IsActive).To(BeFalse())
		})

		It("reads and updates the dominio config", func() {
			ctx := callerCtx(7, &tenantID)
			cfg, err := service.GetDominioConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Rubric).To(Equal("297"))
			Expect(cfg.Code).To(BeNil())

			code := "ABC123"
			cfg, err = service.UpdateDominioConfig(ctx, company.DominioConfigDTO{Rubric: "301", Code: &code})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Rubric).To(Equal("301"))
			Expect(*cfg.Code).To(Equal("ABC123"))
		})

		It("bounds the dominio fields", func() {
			long := "ABCDEFGHIJK"
			_, err := service.UpdateDominioConfig(callerCtx(7, &tenantID), company.DominioConfigDTO{Rubric: "1234567890", Code: &long})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(2))
		})
	})
})
