package role_test

import (
	"context"

	"github.com/frahmantamala/elementar/internal"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
	"github.com/frahmantamala/elementar/internal/role"
	rolePostgres "github.com/frahmantamala/elementar/internal/role/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Role Service", func() {
	var (
		db      *gorm.DB
		service *role.Service

		t1, t2  companyDatamodel.Company
		admin   roleDatamodel.Role
		manager roleDatamodel.Role
	)

	BeforeEach(func() {
		db = openDB()
		service = role.NewService(rolePostgres.NewRoleRepository(db), quietLogger())

		t1 = companyDatamodel.Company{Name: "MATRIZ", IsActive: true, DominioRubric: "297"}
		t2 = companyDatamodel.Company{Name: "FILIAL", IsActive: true, DominioRubric: "297"}
		Expect(db.Create(&t1).Error).To(Succeed())
		Expect(db.Create(&t2).Error).To(Succeed())

		feature := roleDatamodel.Feature{Name: "Users", Slug: "users", Permissions: []roleDatamodel.Permission{
			{Name: "View users", Slug: "user:read"},
			{Name: "Create users", Slug: "user:create"},
		}}
		Expect(db.Create(&feature).Error).To(Succeed())

		admin = roleDatamodel.Role{Name: "Admin", Permissions: feature.Permissions}
		Expect(db.Create(&admin).Error).To(Succeed())

		manager = roleDatamodel.Role{Name: "Manager"}
		Expect(db.Create(&manager).Error).To(Succeed())
		Expect(db.Create(&roleDatamodel.RoleCompany{RoleID: manager.ID, CompanyID: t1.ID}).Error).To(Succeed())
	})

	Describe("ValidateScope", func() {
		It("accepts a global role for every tenant", func() {
			for _, tenantID := range []int64{t1.ID, t2.ID, 999} {
				ok, err := service.ValidateScope(context.Background(), admin.ID, tenantID)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
			}
		})

		It("accepts a scoped role only for its tenants", func() {
			ok, err := service.ValidateScope(context.Background(), manager.ID, t1.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = service.ValidateScope(context.Background(), manager.ID, t2.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("reports unknown roles", func() {
			_, err := service.ValidateScope(context.Background(), 999, t1.ID)
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("ListRoles", func() {
		It("shows global roles and roles scoped to the tenant", func() {
			roles, err := service.ListRoles(tenantCtx(t1.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(2))

			roles, err = service.ListRoles(tenantCtx(t2.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].Name).To(Equal("Admin"))
			Expect(roles[0].Permissions).To(Equal([]string{"user:create", "user:read"}))
		})

		It("requires a tenant", func() {
			_, err := service.ListRoles(context.Background())
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})

		It("hides roles of other tenants by id", func() {
			_, err := service.GetRole(tenantCtx(t2.ID), manager.ID)
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("CreateRole", func() {
		It("scopes the new role to the current tenant", func() {
			created, err := service.CreateRole(tenantCtx(t2.ID), role.CreateRoleDTO{
				Name:        "Auditor",
				Permissions: []string{"user:read"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.CompanyIDs).To(Equal([]int64{t2.ID}))
			Expect(created.Permissions).To(Equal([]string{"user:read"}))

			ok, err := service.ValidateScope(context.Background(), created.ID, t1.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("refuses to create roles for another tenant", func() {
			_, err := service.CreateRole(tenantCtx(t2.ID), role.CreateRoleDTO{Name: "Sneaky", CompanyIDs: []int64{t1.ID}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("rejects unknown permissions", func() {
			_, err := service.CreateRole(tenantCtx(t1.ID), role.CreateRoleDTO{Name: "Odd", Permissions: []string{"user:fly"}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a duplicate name", func() {
			_, err := service.CreateRole(tenantCtx(t1.ID), role.CreateRoleDTO{Name: "Admin"})
			Expect(err).To(MatchError(internal.ErrRoleNameExists))

			_, err = service.CreateRole(tenantCtx(t1.ID), role.CreateRoleDTO{Name: "Manager"})
			Expect(err).To(MatchError(internal.ErrRoleNameExists))
		})

		It("allows a name used only by another tenant's private role", func() {
			created, err := service.CreateRole(tenantCtx(t2.ID), role.CreateRoleDTO{Name: "Manager"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(Equal(manager.ID))
			Expect(created.CompanyIDs).To(Equal([]int64{t2.ID}))
		})
	})

	Describe("UpdateRole and DeleteRole", func() {
		It("refuses to modify shared roles", func() {
			_, err := service.UpdateRole(tenantCtx(t1.ID), admin.ID, role.UpdateRoleDTO{Name: "Boss"})
			Expect(err).To(MatchError(internal.ErrRoleNotManageable))

			Expect(service.DeleteRole(tenantCtx(t1.ID), admin.ID)).To(MatchError(internal.ErrRoleNotManageable))
		})

		It("updates a tenant-private role", func() {
			updated, err := service.UpdateRole(tenantCtx(t1.ID), manager.ID, role.UpdateRoleDTO{
				Name:        "Supervisor",
				Permissions: []string{"user:create"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Supervisor"))
			Expect(updated.Permissions).To(Equal([]string{"user:create"}))
			Expect(updated.CompanyIDs).To(Equal([]int64{t1.ID}))
		})

		It("refuses to delete a role in use", func() {
			m := membershipDatamodel.Membership{UserID: 1, CompanyID: t1.ID, RoleID: manager.ID, IsActive: true}
			Expect(db.Create(&m).Error).To(Succeed())

			Expect(service.DeleteRole(tenantCtx(t1.ID), manager.ID)).To(MatchError(internal.ErrRoleInUse))
		})

		It("deletes an unused tenant-private role", func() {
			Expect(service.DeleteRole(tenantCtx(t1.ID), manager.ID)).To(Succeed())
			_, err := service.GetRole(tenantCtx(t1.ID), manager.ID)
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	It("lists features with their permissions", func() {
		features, err := service.ListFeatures(tenantCtx(t1.ID))
		Expect(err).NotTo(HaveOccurred())
		Expect(features).To(HaveLen(1))
		Expect(features[0].Permissions).To(HaveLen(2))
	})
})
