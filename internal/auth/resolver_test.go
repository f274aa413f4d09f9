package auth_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	var (
		repo     *fakeRepo
		resolver *auth.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newFakeRepo()
		repo.roles[1] = &auth.RoleRecord{ID: 1, Name: "Admin", Permissions: []string{"user:read", "company:create", "employee:delete"}}
		repo.roles[2] = &auth.RoleRecord{ID: 2, Name: "User", Permissions: []string{"employee:read"}}
		repo.companies[1] = true
		repo.companies[2] = true
		repo.companies[3] = false

		repo.identities[10] = &auth.IdentityRecord{ID: 10, Email: "member@test", Name: "Member", IsActive: true}
		repo.identities[20] = &auth.IdentityRecord{ID: 20, Email: "fresh@test", Name: "Fresh", IsActive: true, RoleID: int64Ptr(1)}
		repo.identities[30] = &auth.IdentityRecord{ID: 30, Email: "off@test", Name: "Off", IsActive: false}

		repo.memberships = []auth.MembershipRecord{
			{ID: 1, UserID: 10, CompanyID: 1, RoleID: 1, IsActive: true},
			{ID: 2, UserID: 10, CompanyID: 3, RoleID: 1, IsActive: true},
		}
		resolver = auth.NewResolver(repo)
	})

	Context("with a tenant hint", func() {
		It("resolves an active membership with sorted permissions", func() {
			identity, err := resolver.Resolve(ctx, 10, "1", auth.AccessTenant)
			Expect(err).NotTo(HaveOccurred())
			Expect(*identity.TenantID).To(Equal(int64(1)))
			Expect(identity.Role.Name).To(Equal("Admin"))
			Expect(identity.Role.Permissions).To(Equal([]string{"company:create", "employee:delete", "user:read"}))
			Expect(identity.HasPermission(auth.PermUserRead)).To(BeTrue())
			Expect(identity.HasPermission(auth.PermRoleManage)).To(BeFalse())
		})

		DescribeTable("rejects with the same not-a-member error",
			func(hint string) {
				_, err := resolver.Resolve(ctx, 10, hint, auth.AccessTenant)
				Expect(err).To(MatchError(internal.ErrNotAMember))
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Message).To(Equal("You are not a member of this company"))
			},
			Entry("foreign tenant", "2"),
			Entry("unknown tenant", "999"),
			Entry("inactive tenant", "3"),
			Entry("unparseable hint", "abc"),
			Entry("negative hint", "-1"),
		)

		It("rejects an inactive membership", func() {
			repo.memberships[0].IsActive = false
			_, err := resolver.Resolve(ctx, 10, "1", auth.AccessTenant)
			Expect(err).To(MatchError(internal.ErrNotAMember))
		})

		It("applies the hint on self and bootstrap routes too", func() {
			_, err := resolver.Resolve(ctx, 10, "2", auth.AccessSelf)
			Expect(err).To(MatchError(internal.ErrNotAMember))

			identity, err := resolver.Resolve(ctx, 10, "1", auth.AccessBootstrap)
			Expect(err).NotTo(HaveOccurred())
			Expect(*identity.TenantID).To(Equal(int64(1)))
		})

		It("is idempotent", func() {
			first, err := resolver.Resolve(ctx, 10, "1", auth.AccessTenant)
			Expect(err).NotTo(HaveOccurred())
			second, err := resolver.Resolve(ctx, 10, "1", auth.AccessTenant)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Context("without a tenant hint", func() {
		It("requires a tenant on tenant routes", func() {
			_, err := resolver.Resolve(ctx, 20, "", auth.AccessTenant)
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})

		It("bootstraps an identity with no memberships using its legacy role", func() {
			identity, err := resolver.Resolve(ctx, 20, "", auth.AccessBootstrap)
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.TenantID).To(BeNil())
			Expect(identity.HasPermission(auth.PermCompanyCreate)).To(BeTrue())
		})

		It("refuses bootstrap once any membership exists", func() {
			_, err := resolver.Resolve(ctx, 10, "", auth.AccessBootstrap)
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})

		It("counts inactive memberships when deciding bootstrap", func() {
			repo.memberships = append(repo.memberships, auth.MembershipRecord{ID: 3, UserID: 20, CompanyID: 2, RoleID: 2, IsActive: false})
			_, err := resolver.Resolve(ctx, 20, "", auth.AccessBootstrap)
			Expect(err).To(MatchError(internal.ErrContextRequired))
		})

		It("allows self lookup with empty permissions for members", func() {
			identity, err := resolver.Resolve(ctx, 10, "", auth.AccessSelf)
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.TenantID).To(BeNil())
			Expect(identity.Role.Permissions).To(BeEmpty())
		})
	})

	It("fails for unknown identities", func() {
		_, err := resolver.Resolve(ctx, 404, "1", auth.AccessTenant)
		Expect(err).To(MatchError(internal.ErrIdentityNotFound))
	})

	It("fails for inactive identities", func() {
		_, err := resolver.Resolve(ctx, 30, "", auth.AccessSelf)
		Expect(err).To(MatchError(internal.ErrUserInactive))
	})

	It("surfaces store failures as internal errors", func() {
		repo.err = errors.New("connection refused")
		_, err := resolver.Resolve(ctx, 10, "1", auth.AccessTenant)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
	})
})
