package invitation_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/frahmantamala/elementar/internal"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	invitationDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/invitation"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/core/tenancy"
	"github.com/frahmantamala/elementar/internal/invitation"
	invitationPostgres "github.com/frahmantamala/elementar/internal/invitation/postgres"
	"github.com/frahmantamala/elementar/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
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

func tenantCtx(tenantID int64) context.Context {
	return internal.ContextWithScope(context.Background(), internal.Scope{SubjectID: 1, TenantID: &tenantID})
}

var _ = Describe("Invitation Service", func() {
	var (
		db         *gorm.DB
		publisher  *recordingPublisher
		service    *invitation.Service
		now        time.Time
		companyA   companyDatamodel.Company
		companyB   companyDatamodel.Company
		globalRole roleDatamodel.Role
		scopedToB  roleDatamodel.Role
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
			&userDatamodel.User{},
			&companyDatamodel.Plan{},
			&companyDatamodel.Company{},
			&roleDatamodel.Feature{},
			&roleDatamodel.Permission{},
			&roleDatamodel.Role{},
			&membershipDatamodel.Membership{},
			&invitationDatamodel.Invitation{},
		)).To(Succeed())
		Expect(db.Use(tenancy.NewScopedGateway())).To(Succeed())

		companyA = companyDatamodel.Company{Name: "MATRIZ", IsActive: true, DominioRubric: "297"}
		companyB = companyDatamodel.Company{Name: "FILIAL", IsActive: true, DominioRubric: "297"}
		Expect(db.Create(&companyA).Error).To(Succeed())
		Expect(db.Create(&companyB).Error).To(Succeed())

		globalRole = roleDatamodel.Role{Name: "User"}
		scopedToB = roleDatamodel.Role{Name: "FILIAL only"}
		Expect(db.Create(&globalRole).Error).To(Succeed())
		Expect(db.Create(&scopedToB).Error).To(Succeed())
		Expect(db.Create(&roleDatamodel.RoleCompany{RoleID: scopedToB.ID, CompanyID: companyB.ID}).Error).To(Succeed())

		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		publisher = &recordingPublisher{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := invitationPostgres.NewInvitationRepository(db)
		service = invitation.NewService(repo, role.NewScopeValidator(repo.Roles()), publisher, 24*time.Hour, bcrypt.MinCost, slogger).
			WithClock(func() time.Time { return now })
	})

	invite := func(email string, roleID int64) *invitation.Invitation {
		inv, err := service.Create(tenantCtx(companyA.ID), invitation.CreateInvitationDTO{Email: email, RoleID: roleID})
		Expect(err).NotTo(HaveOccurred())
		return inv
	}

	Describe("Create", func() {
		It("binds the invitation to the current tenant", func() {
			inv := invite(" New.Member@Empresa.test ", globalRole.ID)
			Expect(inv.Email).To(Equal("new.member@empresa.test"))
			Expect(inv.CompanyID).To(Equal(companyA.ID))
			Expect(inv.Token).To(MatchRegexp(`^[0-9a-f]{64}$`))
			Expect(inv.ExpiresAt).To(BeTemporally("==", now.Add(24*time.Hour)))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeInvitationCreated}))
		})

		It("requires a tenant", func() {
			_, err := service.Create(context.Background(), invitation.CreateInvitationDTO{Email: "a@b.test", RoleID: globalRole.ID})
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})

		It("rejects an email that already has an identity", func() {
			Expect(db.Create(&userDatamodel.User{Email: "taken@empresa.test", Name: "T", PasswordHash: "x", IsActive: true}).Error).To(Succeed())
			_, err := service.Create(tenantCtx(companyA.ID), invitation.CreateInvitationDTO{Email: "taken@empresa.test", RoleID: globalRole.ID})
			Expect(err).To(MatchError(internal.ErrEmailExists))
		})

		It("rejects a role scoped to another tenant", func() {
			_, err := service.Create(tenantCtx(companyA.ID), invitation.CreateInvitationDTO{Email: "a@b.test", RoleID: scopedToB.ID})
			Expect(err).To(MatchError(internal.ErrRoleOutOfScope))

			var count int64
			Expect(db.Model(&invitationDatamodel.Invitation{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("accepts a role scoped to the current tenant", func() {
			inv, err := service.Create(tenantCtx(companyB.ID), invitation.CreateInvitationDTO{Email: "a@b.test", RoleID: scopedToB.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.CompanyID).To(Equal(companyB.ID))
		})

		It("reports validation failures", func() {
			_, err := service.Create(tenantCtx(companyA.ID), invitation.CreateInvitationDTO{Email: "not-an-email"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Validate", func() {
		It("describes a pending invitation", func() {
			inv := invite("new@empresa.test", globalRole.ID)

			resp, err := service.Validate(context.Background(), inv.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Email).To(Equal("new@empresa.test"))
			Expect(resp.CompanyName).To(Equal("MATRIZ"))
			Expect(resp.RoleName).To(Equal("User"))
		})

		It("does not know unknown tokens", func() {
			_, err := service.Validate(context.Background(), "deadbeef")
			Expect(err).To(MatchError(internal.ErrInvitationNotFound))
		})

		It("discards an expired invitation", func() {
			inv := invite("late@empresa.test", globalRole.ID)
			now = now.Add(24 * time.Hour)

			_, err := service.Validate(context.Background(), inv.Token)
			Expect(err).To(MatchError(internal.ErrInvitationExpired))

			_, err = service.Validate(context.Background(), inv.Token)
			Expect(err).To(MatchError(internal.ErrInvitationNotFound))
		})
	})

	Describe("Accept", func() {
		It("creates the identity and membership and consumes the token", func() {
			inv := invite("new@empresa.test", globalRole.ID)

			resp, err := service.Accept(context.Background(), invitation.AcceptInvitationDTO{
				Token: inv.Token, Name: "New Member", Password: "s3cretpass",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Email).To(Equal("new@empresa.test"))
			Expect(resp.CompanyID).To(Equal(companyA.ID))
			Expect(resp.RoleID).To(Equal(globalRole.ID))

			var u userDatamodel.User
			Expect(db.First(&u, resp.UserID).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass"))).To(Succeed())

			var m membershipDatamodel.Membership
			Expect(db.Where("user_id = ? AND company_id = ?", u.ID, companyA.ID).First(&m).Error).To(Succeed())
			Expect(m.IsActive).To(BeTrue())

			_, err = service.Accept(context.Background(), invitation.AcceptInvitationDTO{
				Token: inv.Token, Name: "Again", Password: "s3cretpass",
			})
			Expect(err).To(MatchError(internal.ErrInvitationNotFound))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeInvitationCreated, events.EventTypeInvitationAccepted}))
		})

		It("refuses an expired invitation", func() {
			inv := invite("late@empresa.test", globalRole.ID)
			now = now.Add(25 * time.Hour)

			_, err := service.Accept(context.Background(), invitation.AcceptInvitationDTO{
				Token: inv.Token, Name: "Late", Password: "s3cretpass",
			})
			Expect(err).To(MatchError(internal.ErrInvitationExpired))

			var count int64
			Expect(db.Model(&userDatamodel.User{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("rolls back when the role lost its scope after the invitation", func() {
			inv := invite("new@empresa.test", globalRole.ID)
			Expect(db.Create(&roleDatamodel.RoleCompany{RoleID: globalRole.ID, CompanyID: companyB.ID}).Error).To(Succeed())

			_, err := service.Accept(context.Background(), invitation.AcceptInvitationDTO{
				Token: inv.Token, Name: "New", Password: "s3cretpass",
			})
			Expect(err).To(MatchError(internal.ErrRoleOutOfScope))

			var count int64
			Expect(db.Model(&userDatamodel.User{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
			Expect(db.Model(&invitationDatamodel.Invitation{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})
	})

	It("prunes expired invitations only", func() {
		invite("old@empresa.test", globalRole.ID)
		now = now.Add(12 * time.Hour)
		invite("fresh@empresa.test", globalRole.ID)
		now = now.Add(13 * time.Hour)

		n, err := service.PruneExpired(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		var left []invitationDatamodel.Invitation
		Expect(db.Find(&left).Error).To(Succeed())
		Expect(left).To(HaveLen(1))
		Expect(left[0].Email).To(Equal("fresh@empresa.test"))
	})
})
