package auth

import (
	"net/http"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/transport"
	"github.com/frahmantamala/elementar/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	Verifier     Verifier
	Resolver     IdentityResolver
	TenantHeader string
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, verifier Verifier, resolver IdentityResolver, tenantHeader string) *Handler {
	if tenantHeader == "" {
		tenantHeader = internal.DefaultTenantHeader
	}
	return &Handler{
		BaseHandler:  base,
		Service:      svc,
		Verifier:     verifier,
		Resolver:     resolver,
		TenantHeader: tenantHeader,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		logger.From(r.Context()).Warn("authentication failed", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		logger.From(r.Context()).Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout only validates the token; access tokens are stateless and expire on their own.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, internal.ErrMissingToken)
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, internal.ErrUnauthenticated)
		return
	}

	resp, err := h.Service.Me(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware requires a tenant header naming an active membership.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return h.authenticate(AccessTenant)(next)
}

// SelfLookupMiddleware resolves without a tenant when the header is absent.
func (h *Handler) SelfLookupMiddleware(next http.Handler) http.Handler {
	return h.authenticate(AccessSelf)(next)
}

// BootstrapMiddleware admits tenantless requests only from identities with
// no memberships at all.
func (h *Handler) BootstrapMiddleware(next http.Handler) http.Handler {
	return h.authenticate(AccessBootstrap)(next)
}

func (h *Handler) authenticate(access Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lg := logger.From(r.Context())

			subjectID, err := h.Verifier.Verify(h.ExtractTokenFromHeader(r))
			if err != nil {
				lg.Warn("auth middleware: token rejected", "error", err)
				h.HandleServiceError(w, r, err)
				return
			}

			identity, err := h.Resolver.Resolve(r.Context(), subjectID, r.Header.Get(h.TenantHeader), access)
			if err != nil {
				lg.Warn("auth middleware: resolution failed", "user_id", subjectID, "access", access.String(), "error", err)
				h.HandleServiceError(w, r, err)
				return
			}

			ctx := internal.ContextWithScope(r.Context(), internal.Scope{SubjectID: identity.ID, TenantID: identity.TenantID})
			ctx = ContextWithIdentity(ctx, identity)
			ctx = logger.WithScope(ctx, identity.ID, identity.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
