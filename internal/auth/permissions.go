package auth

import "context"

// Permission is a permission slug in "<resource>:<action>" form.
type Permission string

const (
	PermCompanyRead       Permission = "company:read"
	PermCompanyCreate     Permission = "company:create"
	PermCompanyUpdate     Permission = "company:update"
	PermCompanyDelete     Permission = "company:delete"
	PermCompanyInactivate Permission = "company:inactivate"

	PermUserRead       Permission = "user:read"
	PermUserCreate     Permission = "user:create"
	PermUserUpdate     Permission = "user:update"
	PermUserDelete     Permission = "user:delete"
	PermUserInactivate Permission = "user:inactivate"

	PermEmployeeRead   Permission = "employee:read"
	PermEmployeeCreate Permission = "employee:create"
	PermEmployeeUpdate Permission = "employee:update"
	PermEmployeeDelete Permission = "employee:delete"

	PermMealRead   Permission = "meal:read"
	PermMealCreate Permission = "meal:create"
	PermMealUpdate Permission = "meal:update"
	PermMealDelete Permission = "meal:delete"

	PermTaskRead   Permission = "task:read"
	PermTaskCreate Permission = "task:create"
	PermTaskUpdate Permission = "task:update"
	PermTaskDelete Permission = "task:delete"

	PermFeatureManage    Permission = "feature:manage"
	PermPermissionManage Permission = "permission:manage"
	PermRoleManage       Permission = "role:manage"

	PermIntegrationDominio Permission = "integration:dominio"

	PermChatRead   Permission = "chat:read"
	PermChatWrite  Permission = "chat:write"
	PermChatDelete Permission = "chat:delete"
)

type PermissionDefinition struct {
	Slug Permission
	Name string
}

type FeatureDefinition struct {
	Slug        string
	Name        string
	Description string
	Permissions []PermissionDefinition
}

var catalog = []FeatureDefinition{
	{Slug: "companies", Name: "Companies", Description: "Company management", Permissions: []PermissionDefinition{
		{PermCompanyRead, "View companies"},
		{PermCompanyCreate, "Create companies"},
		{PermCompanyUpdate, "Edit companies"},
		{PermCompanyDelete, "Delete companies"},
		{PermCompanyInactivate, "Inactivate companies"},
	}},
	{Slug: "users", Name: "Users", Description: "User management", Permissions: []PermissionDefinition{
		{PermUserRead, "View users"},
		{PermUserCreate, "Create users"},
		{PermUserUpdate, "Edit users"},
		{PermUserDelete, "Delete users"},
		{PermUserInactivate, "Inactivate users"},
	}},
	{Slug: "employees", Name: "Employees", Description: "Employee records", Permissions: []PermissionDefinition{
		{PermEmployeeRead, "View employees"},
		{PermEmployeeCreate, "Create employees"},
		{PermEmployeeUpdate, "Edit employees"},
		{PermEmployeeDelete, "Delete employees"},
	}},
	{Slug: "meals", Name: "Meals", Description: "Meal tracking", Permissions: []PermissionDefinition{
		{PermMealRead, "View meals"},
		{PermMealCreate, "Register meals"},
		{PermMealUpdate, "Edit meals"},
		{PermMealDelete, "Delete meals"},
	}},
	{Slug: "tasks", Name: "Tasks", Description: "Task board", Permissions: []PermissionDefinition{
		{PermTaskRead, "View tasks"},
		{PermTaskCreate, "Create tasks"},
		{PermTaskUpdate, "Edit tasks"},
		{PermTaskDelete, "Delete tasks"},
	}},
	{Slug: "access_control", Name: "Access control", Description: "Roles, permissions and features", Permissions: []PermissionDefinition{
		{PermFeatureManage, "Manage features"},
		{PermPermissionManage, "Manage permissions"},
		{PermRoleManage, "Manage roles"},
	}},
	{Slug: "integrations", Name: "Integrations", Description: "Accounting integrations", Permissions: []PermissionDefinition{
		{PermIntegrationDominio, "Dominio integration"},
	}},
	{Slug: "chat", Name: "Chat", Description: "Internal chat", Permissions: []PermissionDefinition{
		{PermChatRead, "Read messages"},
		{PermChatWrite, "Send messages"},
		{PermChatDelete, "Delete messages"},
	}},
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, f := range catalog {
		for _, p := range f.Permissions {
			m[string(p.Slug)] = struct{}{}
		}
	}
	return m
}()

// Catalog returns the feature and permission registry used for seeding.
func Catalog() []FeatureDefinition {
	out := make([]FeatureDefinition, len(catalog))
	copy(out, catalog)
	return out
}

func AllPermissions() []Permission {
	var out []Permission
	for _, f := range catalog {
		for _, p := range f.Permissions {
			out = append(out, p.Slug)
		}
	}
	return out
}

func IsKnown(slug string) bool {
	_, ok := known[slug]
	return ok
}

type PermissionChecker interface {
	HasPermission(ctx context.Context, userPermissions []string, permission Permission) (bool, error)
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

// HasPermission is an exact slug match. There is no wildcard or admin bypass.
func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, userPermissions []string, permission Permission) (bool, error) {
	return c.HasAnyPermission(userPermissions, []Permission{permission}), nil
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []Permission) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == string(requiredPerm) {
				return true
			}
		}
	}
	return false
}
