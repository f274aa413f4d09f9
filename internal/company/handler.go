package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/elementar/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateCompanyDTO) (*Company, error)
	GetCurrent(ctx context.Context) (*Company, error)
	UpdateCurrent(ctx context.Context, dto UpdateCompanyDTO) (*Company, error)
	InactivateCurrent(ctx context.Context) (*Company, error)
	GetDominioConfig(ctx context.Context) (DominioConfigResponse, error)
	UpdateDominioConfig(ctx context.Context, dto DominioConfigDTO) (DominioConfigResponse, error)
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

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var dto CreateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetCurrent(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	var dto UpdateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.UpdateCurrent(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) InactivateCurrent(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.InactivateCurrent(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) GetDominioConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.GetDominioConfig(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateDominioConfig(w http.ResponseWriter, r *http.Request) {
	var dto DominioConfigDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	cfg, err := h.Service.UpdateDominioConfig(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}
