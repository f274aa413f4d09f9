package invitation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateInvitationDTO) (*Invitation, error)
	Validate(ctx context.Context, token string) (*ValidationResponse, error)
	Accept(ctx context.Context, dto AcceptInvitationDTO) (*AcceptResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var dto CreateInvitationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	inv, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, InvitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		RoleID:    inv.RoleID,
		CompanyID: inv.CompanyID,
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
	})
}

func (h *Handler) ValidateInvitation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		h.WriteError(w, internal.ErrInvitationNotFound)
		return
	}

	resp, err := h.Service.Validate(r.Context(), token)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var dto AcceptInvitationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Accept(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}
