package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

type TenantsHandler struct {
	TenantService *service.TenantService
}

// HandleCreate provisions a tenant.
//
//	POST /v1/tenants -> 201 iamsdk.Tenant
func (h *TenantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.CreateTenantRequest
	if !decode(w, r, &req) {
		return
	}

	t, err := h.TenantService.Provision(r.Context(), req.Name, req.Description, req.Enabled)
	if err != nil {
		writeServiceError(w, r, err, "failed to provision tenant")
		return
	}
	writeVersioned(w, http.StatusCreated, t.Version, toTenant(t))
}

func (h *TenantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.TenantService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list tenants")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.ListTenantsResponse{Tenants: mapSlice(tenants, toTenant)})
}

// HandleGet resolves {tenant} as an id, a UUID or a name.
func (h *TenantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.TenantService.Get(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get tenant")
		return
	}
	writeVersioned(w, http.StatusOK, t.Version, toTenant(t))
}

func (h *TenantsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req iamsdk.UpdateTenantRequest
	if !decode(w, r, &req) {
		return
	}

	t, err := h.TenantService.Update(ctx, r.PathValue("tenant"), service.TenantUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update tenant")
		return
	}
	writeVersioned(w, http.StatusOK, t.Version, toTenant(t))
}

func (h *TenantsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.TenantService.Delete(ctx, r.PathValue("tenant")); err != nil {
		writeServiceError(w, r, err, "failed to delete tenant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantsHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.TenantService.Activate)
}

func (h *TenantsHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.TenantService.Deactivate)
}

func (h *TenantsHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, ref string) (domain.Tenant, error),
) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	t, err := fn(ctx, r.PathValue("tenant"))
	if err != nil {
		writeServiceError(w, r, err, "failed to change tenant activation")
		return
	}
	writeVersioned(w, http.StatusOK, t.Version, toTenant(t))
}
