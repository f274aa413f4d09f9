package usage

import (
	"context"
	"time"

	companyDatamodel "github.com/frahmantamala/elementar/internal/core/datamodel/company"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResourceKind names a plan-capped resource.
type ResourceKind string

const (
	ResourceUsers     ResourceKind = "users"
	ResourceEmployees ResourceKind = "employees"
)

// Limit returns the plan cap for kind; nil means uncapped.
func (k ResourceKind) Limit(plan *companyDatamodel.Plan) *int64 {
	switch k {
	case ResourceUsers:
		return plan.MaxUsers
	case ResourceEmployees:
		return plan.MaxEmployees
	default:
		return nil
	}
}

type RepositoryAPI interface {
	// GetTenant returns the tenant with its plan preloaded, or nil.
	GetTenant(ctx context.Context, tenantID int64) (*companyDatamodel.Company, error)
	CountActiveMemberships(ctx context.Context, tenantID int64) (int64, error)
	CountActiveEmployees(ctx context.Context) (int64, error)
	CountPendingInvitations(ctx context.Context, now time.Time) (int64, error)
}

var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "elementar_usage_guard_decisions_total",
	Help: "Usage guard decisions by resource and outcome.",
}, []string{"resource", "outcome"})
