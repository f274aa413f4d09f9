package usage

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/transport"
	"github.com/frahmantamala/elementar/pkg/logger"
)

// Guard rejects creations that would exceed the tenant's plan.
type Guard struct {
	*transport.BaseHandler
	repo RepositoryAPI
}

func NewGuard(base *transport.BaseHandler, repo RepositoryAPI) *Guard {
	return &Guard{BaseHandler: base, repo: repo}
}

// Check fails once the tenant's usage of kind is at its plan limit. Unexpired
// invitations hold a user seat until they are accepted or expire, so accepting
// one never needs its own check. The count is not atomic with the create that
// follows, so concurrent requests near the limit can overshoot it.
func (g *Guard) Check(ctx context.Context, kind ResourceKind) error {
	tenantID, ok := internal.TenantIDFromContext(ctx)
	if !ok {
		return internal.ErrContextRequired
	}

	tenant, err := g.repo.GetTenant(ctx, tenantID)
	if err != nil {
		return internal.NewInternalError("failed to load company plan", err)
	}
	if tenant == nil {
		return internal.ErrTenantNotFound
	}
	if tenant.Plan == nil {
		return nil
	}
	limit := kind.Limit(tenant.Plan)
	if limit == nil {
		return nil
	}

	var count int64
	switch kind {
	case ResourceUsers:
		count, err = g.countSeats(ctx, tenantID)
	case ResourceEmployees:
		count, err = g.repo.CountActiveEmployees(ctx)
	}
	if err != nil {
		return internal.NewInternalError("failed to count usage", err)
	}

	if count >= *limit {
		logger.From(ctx).Warn("plan limit reached", "resource", kind, "limit", *limit, "count", count)
		return internal.NewPlanLimitError(string(kind), *limit)
	}
	return nil
}

func (g *Guard) countSeats(ctx context.Context, tenantID int64) (int64, error) {
	members, err := g.repo.CountActiveMemberships(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	pending, err := g.repo.CountPendingInvitations(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	return members + pending, nil
}

func (g *Guard) Require(kind ResourceKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(r.Context(), kind); err != nil {
				decisionsTotal.WithLabelValues(string(kind), "denied").Inc()
				g.HandleServiceError(w, r, err)
				return
			}
			decisionsTotal.WithLabelValues(string(kind), "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
