package tenancy

import (
	"fmt"
	"reflect"

	"github.com/frahmantamala/elementar/internal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const (
	DefaultColumn = "company_id"
	DefaultField  = "CompanyID"
)

// DefaultTables lists the tenant-owned tables. Identities, companies, roles
// and memberships are global or resolved before a tenant exists.
var DefaultTables = []string{"employees", "invitations", "tasks"}

// ScopedGateway is a gorm plugin that reads the request scope from the
// statement context and pins every statement on a tenant-owned table to the
// scope's tenant.
//
// Raw SQL built with db.Raw or db.Exec is not rewritten.
type ScopedGateway struct {
	tables map[string]struct{}
	column string
	field  string
}

func NewScopedGateway(tables ...string) *ScopedGateway {
	if len(tables) == 0 {
		tables = DefaultTables
	}
	g := &ScopedGateway{
		tables: make(map[string]struct{}, len(tables)),
		column: DefaultColumn,
		field:  DefaultField,
	}
	for _, t := range tables {
		g.tables[t] = struct{}{}
	}
	return g
}

func (g *ScopedGateway) Name() string {
	return "tenancy:scoped_gateway"
}

func (g *ScopedGateway) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("tenancy:scope_query", g.scopeRead); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenancy:scope_row", g.scopeRead); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("tenancy:assign_tenant", g.assignTenant); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenancy:scope_update", g.scopeUpdate); err != nil {
		return err
	}
	return cb.Delete().Before("gorm:delete").Register("tenancy:scope_delete", g.scopeWrite)
}

// Owns reports whether the table is tenant-owned.
func (g *ScopedGateway) Owns(table string) bool {
	_, ok := g.tables[table]
	return ok
}

// tenantFor decides ownership from the statement table, so Table("employees")
// without a model is scoped like Model(&Employee{}).
func (g *ScopedGateway) tenantFor(db *gorm.DB) (int64, bool) {
	if db.Error != nil {
		return 0, false
	}
	table := db.Statement.Table
	if table == "" && db.Statement.Schema != nil {
		table = db.Statement.Schema.Table
	}
	if !g.Owns(table) {
		return 0, false
	}
	return internal.TenantIDFromContext(db.Statement.Context)
}

func (g *ScopedGateway) scopeRead(db *gorm.DB) {
	tenantID, ok := g.tenantFor(db)
	if !ok || db.Statement.SQL.Len() > 0 {
		return
	}
	g.addCondition(db, tenantID)
}

// scopeUpdate pins the tenant column in the SET values before scoping the
// statement. A row never moves to another tenant.
func (g *ScopedGateway) scopeUpdate(db *gorm.DB) {
	tenantID, ok := g.tenantFor(db)
	if !ok || db.Statement.SQL.Len() > 0 {
		return
	}
	switch dest := db.Statement.Dest.(type) {
	case map[string]interface{}:
		g.dropTenantKeys(dest)
	case *map[string]interface{}:
		g.dropTenantKeys(*dest)
	default:
		if sch := db.Statement.Schema; sch != nil {
			rv := reflect.Indirect(reflect.ValueOf(dest))
			if rv.Kind() == reflect.Struct && rv.Type() == sch.ModelType {
				if field := sch.LookUpField(g.field); field != nil {
					if err := field.Set(db.Statement.Context, rv, tenantID); err != nil {
						_ = db.AddError(err)
						return
					}
				}
			}
		}
	}
	g.scopeWrite(db)
}

func (g *ScopedGateway) dropTenantKeys(m map[string]interface{}) {
	delete(m, g.column)
	delete(m, g.field)
}

func (g *ScopedGateway) scopeWrite(db *gorm.DB) {
	tenantID, ok := g.tenantFor(db)
	if !ok || db.Statement.SQL.Len() > 0 {
		return
	}
	// Leave unconditioned writes alone so gorm still raises ErrMissingWhereClause.
	if !hasWhere(db) && !hasPrimaryKey(db) && !db.AllowGlobalUpdate {
		return
	}
	g.addCondition(db, tenantID)
}

// addCondition wraps the caller's conditions in parentheses and ANDs the
// tenant predicate, so OR branches cannot escape it.
func (g *ScopedGateway) addCondition(db *gorm.DB, tenantID int64) {
	cond := clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: g.column},
		Value:  tenantID,
	}

	if c, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok && len(where.Exprs) > 0 {
			where.Exprs = []clause.Expression{clause.And(where.Exprs...), cond}
			c.Expression = where
			db.Statement.Clauses["WHERE"] = c
			return
		}
	}
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{cond}})
}

func (g *ScopedGateway) assignTenant(db *gorm.DB) {
	tenantID, ok := g.tenantFor(db)
	if !ok {
		return
	}

	switch dest := db.Statement.Dest.(type) {
	case map[string]interface{}:
		g.pinMap(dest, tenantID)
		return
	case *map[string]interface{}:
		g.pinMap(*dest, tenantID)
		return
	case []map[string]interface{}:
		for _, m := range dest {
			g.pinMap(m, tenantID)
		}
		return
	case *[]map[string]interface{}:
		for _, m := range *dest {
			g.pinMap(m, tenantID)
		}
		return
	}

	var field *schema.Field
	if db.Statement.Schema != nil {
		field = db.Statement.Schema.LookUpField(g.field)
	}
	if field == nil {
		_ = db.AddError(fmt.Errorf("tenancy: cannot assign %s on table %s", g.column, db.Statement.Table))
		return
	}

	ctx := db.Statement.Context
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if err := field.Set(ctx, elem, tenantID); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		if err := field.Set(ctx, rv, tenantID); err != nil {
			_ = db.AddError(err)
		}
	}
}

func (g *ScopedGateway) pinMap(m map[string]interface{}, tenantID int64) {
	delete(m, g.field)
	m[g.column] = tenantID
}

func hasWhere(db *gorm.DB) bool {
	c, ok := db.Statement.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	return ok && len(where.Exprs) > 0
}

func hasPrimaryKey(db *gorm.DB) bool {
	if db.Statement.Schema == nil {
		return false
	}
	pk := db.Statement.Schema.PrioritizedPrimaryField
	if pk == nil {
		return false
	}
	rv := db.Statement.ReflectValue
	if rv.Kind() != reflect.Struct {
		return false
	}
	_, zero := pk.ValueOf(db.Statement.Context, rv)
	return !zero
}
