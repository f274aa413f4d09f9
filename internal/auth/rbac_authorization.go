package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/transport"
	"github.com/frahmantamala/elementar/pkg/logger"
)

type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, userPermissions []string, permission Permission) (bool, error)
}

// RBACAuthorization guards routes by permission slug against the identity
// resolved earlier in the chain. It never touches the data store.
type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer PermissionAuthorizer
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, base *transport.BaseHandler) *RBACAuthorization {
	if authorizer == nil {
		authorizer = NewPermissionChecker()
	}
	return &RBACAuthorization{
		BaseHandler: base,
		authorizer:  authorizer,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lg := logger.From(r.Context())

		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			lg.Warn("authorization check failed: identity not found in context", "required_permission", permission)
			permissionDecisionsTotal.WithLabelValues(string(permission), "unauthenticated").Inc()
			ra.WriteError(w, internal.ErrUnauthenticated)
			return
		}

		hasAccess, err := ra.authorizer.HasPermission(r.Context(), identity.Role.Permissions, permission)
		if err != nil {
			ra.HandleServiceError(w, r, err)
			return
		}

		if !hasAccess {
			lg.Warn("access denied: insufficient permissions",
				"required_permission", permission,
				"role", identity.Role.Name)
			permissionDecisionsTotal.WithLabelValues(string(permission), "denied").Inc()
			ra.WriteError(w, internal.NewPermissionDeniedError(string(permission)))
			return
		}

		permissionDecisionsTotal.WithLabelValues(string(permission), "allowed").Inc()
		next.ServeHTTP(w, r)
	}
}

// Require returns middleware that admits only identities holding permission.
func (ra *RBACAuthorization) Require(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}
