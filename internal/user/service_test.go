package user_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/frahmantamala/elementar/internal"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/frahmantamala/elementar/internal/user"
	userPostgres "github.com/frahmantamala/elementar/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func tenantCtx(tenantID int64) context.Context {
	return internal.ContextWithScope(context.Background(), internal.Scope{SubjectID: 1, TenantID: &tenantID})
}

var _ = Describe("User Service", func() {
	var (
		db       *gorm.DB
		service  *user.Service
		companyA companyDatamodel.Company
		companyB companyDatamodel.Company
		member   roleDatamodel.Role
		manager  roleDatamodel.Role
		onlyB    roleDatamodel.Role
		alice    userDatamodel.User
		bob      userDatamodel.User
		aliceInA membershipDatamodel.Membership
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
		)).To(Succeed())

		companyA = companyDatamodel.Company{Name: "MATRIZ", IsActive: true, DominioRubric: "297"}
		companyB = companyDatamodel.Company{Name: "FILIAL", IsActive: true, DominioRubric: "297"}
		Expect(db.Create(&companyA).Error).To(Succeed())
		Expect(db.Create(&companyB).Error).To(Succeed())

		member = roleDatamodel.Role{Name: "User"}
		manager = roleDatamodel.Role{Name: "Manager"}
		onlyB = roleDatamodel.Role{Name: "FILIAL only"}
		Expect(db.Create(&member).Error).To(Succeed())
		Expect(db.Create(&manager).Error).To(Succeed())
		Expect(db.Create(&onlyB).Error).To(Succeed())
		Expect(db.Create(&roleDatamodel.RoleCompany{RoleID: onlyB.ID, CompanyID: companyB.ID}).Error).To(Succeed())

		alice = userDatamodel.User{Email: "alice@empresa.test", Name: "Alice", PasswordHash: "x", IsActive: true}
		bob = userDatamodel.User{Email: "bob@empresa.test", Name: "Bob", PasswordHash: "x", IsActive: true}
		Expect(db.Create(&alice).Error).To(Succeed())
		Expect(db.Create(&bob).Error).To(Succeed())

		aliceInA = membershipDatamodel.Membership{UserID: alice.ID, CompanyID: companyA.ID, RoleID: member.ID, IsActive: true}
		Expect(db.Create(&aliceInA).Error).To(Succeed())
		Expect(db.Create(&membershipDatamodel.Membership{UserID: bob.ID, CompanyID: companyB.ID, RoleID: member.ID, IsActive: true}).Error).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(userPostgres.NewUserRepository(db), nil, bcrypt.MinCost, slogger)
	})

	Describe("List and Get", func() {
		It("lists only members of the current tenant", func() {
			members, err := service.List(tenantCtx(companyA.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))
			Expect(members[0].Email).To(Equal("alice@empresa.test"))
			Expect(members[0].RoleName).To(Equal("User"))
		})

		It("does not find members of another tenant", func() {
			_, err := service.Get(tenantCtx(companyA.ID), bob.ID)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("requires a tenant", func() {
			_, err := service.List(context.Background())
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})
	})

	Describe("Create", func() {
		It("creates a new identity with a membership", func() {
			m, err := service.Create(tenantCtx(companyA.ID), user.CreateUserDTO{
				Email: "Carol@Empresa.test", Name: "Carol", Password: "s3cretpass", RoleID: manager.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Email).To(Equal("carol@empresa.test"))
			Expect(m.RoleName).To(Equal("Manager"))
			Expect(m.CompanyID).To(Equal(companyA.ID))

			var stored userDatamodel.User
			Expect(db.First(&stored, m.ID).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpass"))).To(Succeed())
		})

		It("refuses an email that belongs to another tenant's member", func() {
			_, err := service.Create(tenantCtx(companyA.ID), user.CreateUserDTO{
				Email: "bob@empresa.test", Name: "Whatever", Password: "s3cretpass", RoleID: member.ID,
			})
			Expect(err).To(MatchError(internal.ErrEmailExists))

			var count int64
			Expect(db.Model(&membershipDatamodel.Membership{}).Where("user_id = ?", bob.ID).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))

			var stored userDatamodel.User
			Expect(db.First(&stored, bob.ID).Error).To(Succeed())
			Expect(stored.Name).To(Equal("Bob"))
		})

		It("refuses an email already in the tenant", func() {
			_, err := service.Create(tenantCtx(companyA.ID), user.CreateUserDTO{
				Email: "alice@empresa.test", Name: "Alice", Password: "s3cretpass", RoleID: member.ID,
			})
			Expect(err).To(MatchError(internal.ErrEmailExists))
		})

		It("requires a password", func() {
			_, err := service.Create(tenantCtx(companyA.ID), user.CreateUserDTO{
				Email: "dave@empresa.test", Name: "Dave", RoleID: member.ID,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

			var count int64
			Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "dave@empresa.test").Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("rejects a role scoped to another tenant", func() {
			_, err := service.Create(tenantCtx(companyA.ID), user.CreateUserDTO{
				Email: "erin@empresa.test", Name: "Erin", Password: "s3cretpass", RoleID: onlyB.ID,
			})
			Expect(err).To(MatchError(internal.ErrRoleOutOfScope))
		})
	})

	Describe("ChangeRole", func() {
		It("rebinds the membership", func() {
			m, err := service.ChangeRole(tenantCtx(companyA.ID), alice.ID, user.ChangeRoleDTO{RoleID: manager.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.RoleID).To(Equal(manager.ID))
		})

		It("refuses a role out of scope", func() {
			_, err := service.ChangeRole(tenantCtx(companyA.ID), alice.ID, user.ChangeRoleDTO{RoleID: onlyB.ID})
			Expect(err).To(MatchError(internal.ErrRoleOutOfScope))

			var stored membershipDatamodel.Membership
			Expect(db.First(&stored, aliceInA.ID).Error).To(Succeed())
			Expect(stored.RoleID).To(Equal(member.ID))
		})

		It("cannot reach members of another tenant", func() {
			_, err := service.ChangeRole(tenantCtx(companyA.ID), bob.ID, user.ChangeRoleDTO{RoleID: manager.ID})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	It("inactivates the membership in the current tenant only", func() {
		Expect(db.Create(&membershipDatamodel.Membership{UserID: alice.ID, CompanyID: companyB.ID, RoleID: member.ID, IsActive: true}).Error).To(Succeed())

		m, err := service.Inactivate(tenantCtx(companyA.ID), alice.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.IsActive).To(BeFalse())

		other, err := service.Get(tenantCtx(companyB.ID), alice.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(other.IsActive).To(BeTrue())

		var identity userDatamodel.User
		Expect(db.First(&identity, alice.ID).Error).To(Succeed())
		Expect(identity.IsActive).To(BeTrue())
	})
})
