package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/elementar/internal/auth"
	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	seedAdminEmail    = "admin@empresa.test"
	seedAdminPassword = "password"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the access-control catalog, shared roles, plans and two demo companies.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, db, err := openDatabase(cfg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		if err := runSeed(context.Background(), db, clearData, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

// seedRoles maps each shared role to its permission slugs; nil grants the
// whole catalog.
var seedRoles = []struct {
	Name        string
	Description string
	Permissions []auth.Permission
}{
	{"Admin", "Full access inside the company", nil},
	{"Manager", "Manages people and records", []auth.Permission{
		auth.PermCompanyRead,
		auth.PermUserRead, auth.PermUserCreate, auth.PermUserUpdate, auth.PermUserInactivate,
		auth.PermEmployeeRead, auth.PermEmployeeCreate, auth.PermEmployeeUpdate, auth.PermEmployeeDelete,
		auth.PermMealRead, auth.PermMealCreate, auth.PermMealUpdate,
		auth.PermTaskRead, auth.PermTaskCreate, auth.PermTaskUpdate,
		auth.PermChatRead, auth.PermChatWrite,
	}},
	{"User", "Day to day usage", []auth.Permission{
		auth.PermCompanyRead,
		auth.PermEmployeeRead,
		auth.PermMealRead, auth.PermMealCreate,
		auth.PermTaskRead,
		auth.PermChatRead, auth.PermChatWrite,
	}},
}

func int64Ptr(v int64) *int64 { return &v }

var seedPlans = []companyDatamodel.Plan{
	{Name: "Basic", MaxUsers: int64Ptr(5), MaxEmployees: int64Ptr(50)},
	{Name: "Enterprise"},
}

// runSeed is idempotent; rows are matched by their natural keys.
func runSeed(ctx context.Context, db *gorm.DB, clear bool, bcryptCost int) error {
	db = db.WithContext(ctx)

	if clear {
		if err := clearSeedData(db); err != nil {
			return err
		}
		fmt.Println("Cleared existing data")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		permsBySlug, err := seedCatalog(tx)
		if err != nil {
			return err
		}

		roles := make(map[string]roleDatamodel.Role, len(seedRoles))
		for _, def := range seedRoles {
			r := roleDatamodel.Role{Name: def.Name}
			if err := tx.Where(roleDatamodel.Role{Name: def.Name}).
				Where("NOT EXISTS (SELECT 1 FROM role_companies rc WHERE rc.role_id = roles.id)").
				Attrs(roleDatamodel.Role{Description: def.Description}).
				FirstOrCreate(&r).Error; err != nil {
				return fmt.Errorf("role %s: %w", def.Name, err)
			}

			slugs := def.Permissions
			if slugs == nil {
				slugs = auth.AllPermissions()
			}
			for _, slug := range slugs {
				link := roleDatamodel.RolePermission{RoleID: r.ID, PermissionID: permsBySlug[string(slug)]}
				if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
					return fmt.Errorf("grant %s to %s: %w", slug, def.Name, err)
				}
			}
			roles[def.Name] = r
			fmt.Printf("Seeded role: %s (%d permissions)\n", def.Name, len(slugs))
		}

		var basic companyDatamodel.Plan
		for _, p := range seedPlans {
			plan := p
			if err := tx.Where(companyDatamodel.Plan{Name: p.Name}).
				Attrs(companyDatamodel.Plan{MaxUsers: p.MaxUsers, MaxEmployees: p.MaxEmployees}).
				FirstOrCreate(&plan).Error; err != nil {
				return fmt.Errorf("plan %s: %w", p.Name, err)
			}
			if plan.Name == "Basic" {
				basic = plan
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcryptCost)
		if err != nil {
			return err
		}
		admin := userDatamodel.User{Email: seedAdminEmail}
		if err := tx.Where(userDatamodel.User{Email: seedAdminEmail}).
			Attrs(userDatamodel.User{Name: "Administrador", PasswordHash: string(hash), IsActive: true}).
			FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("admin user: %w", err)
		}
		fmt.Println("Seeded admin user:", seedAdminEmail)

		for _, name := range []string{"MATRIZ", "FILIAL"} {
			c := companyDatamodel.Company{Name: name}
			if err := tx.Where(companyDatamodel.Company{Name: name}).
				Attrs(companyDatamodel.Company{
					IsActive:      true,
					ManagerID:     &admin.ID,
					PlanID:        &basic.ID,
					DominioRubric: companyDatamodel.DefaultDominioRubric,
				}).
				FirstOrCreate(&c).Error; err != nil {
				return fmt.Errorf("company %s: %w", name, err)
			}

			m := membershipDatamodel.Membership{UserID: admin.ID, CompanyID: c.ID}
			if err := tx.Where(membershipDatamodel.Membership{UserID: admin.ID, CompanyID: c.ID}).
				Attrs(membershipDatamodel.Membership{RoleID: roles["Admin"].ID, IsActive: true}).
				FirstOrCreate(&m).Error; err != nil {
				return fmt.Errorf("membership %s: %w", name, err)
			}
			fmt.Printf("Seeded company: %s\n", name)
		}

		return nil
	})
}

func seedCatalog(tx *gorm.DB) (map[string]int64, error) {
	perms := make(map[string]int64)
	for _, f := range auth.Catalog() {
		feature := roleDatamodel.Feature{Slug: f.Slug}
		if err := tx.Where(roleDatamodel.Feature{Slug: f.Slug}).
			Attrs(roleDatamodel.Feature{Name: f.Name, Description: f.Description}).
			FirstOrCreate(&feature).Error; err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.Slug, err)
		}
		for _, p := range f.Permissions {
			perm := roleDatamodel.Permission{Slug: string(p.Slug)}
			if err := tx.Where(roleDatamodel.Permission{Slug: string(p.Slug)}).
				Attrs(roleDatamodel.Permission{Name: p.Name, FeatureID: &feature.ID}).
				FirstOrCreate(&perm).Error; err != nil {
				return nil, fmt.Errorf("permission %s: %w", p.Slug, err)
			}
			perms[perm.Slug] = perm.ID
		}
	}
	fmt.Printf("Seeded %d permissions\n", len(perms))
	return perms, nil
}

// clearSeedData empties every table, children first.
func clearSeedData(db *gorm.DB) error {
	tables := []string{
		"tasks",
		"employees",
		"invitations",
		"user_memberships",
		"role_companies",
		"role_permissions",
		"users",
		"companies",
		"plans",
		"roles",
		"permissions",
		"features",
	}
	for _, t := range tables {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return nil
}
