package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

type RolesHandler struct {
	RoleService *service.RoleService
}

func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.CreateRoleRequest
	if !decode(w, r, &req) {
		return
	}

	role, err := h.RoleService.Provision(r.Context(), r.PathValue("tenant"), req.Name, req.Description, req.SupportsNesting)
	if err != nil {
		writeServiceError(w, r, err, "failed to provision role")
		return
	}
	writeVersioned(w, http.StatusCreated, role.Version, toRole(role))
}

func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleService.List(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list roles")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.ListRolesResponse{Roles: mapSlice(roles, toRole)})
}

func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, err := h.RoleService.Get(r.Context(), r.PathValue("tenant"), r.PathValue("role"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get role")
		return
	}
	writeVersioned(w, http.StatusOK, role.Version, toRole(role))
}

// HandleDelete removes the role together with its backing group.
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.RoleService.Delete(ctx, r.PathValue("tenant"), r.PathValue("role")); err != nil {
		writeServiceError(w, r, err, "failed to delete role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RolesHandler) HandleAssignUser(w http.ResponseWriter, r *http.Request) {
	h.assignment(w, r, "username", h.RoleService.AssignUser)
}

func (h *RolesHandler) HandleUnassignUser(w http.ResponseWriter, r *http.Request) {
	h.assignment(w, r, "username", h.RoleService.UnassignUser)
}

func (h *RolesHandler) HandleAssignGroup(w http.ResponseWriter, r *http.Request) {
	h.assignment(w, r, "group", h.RoleService.AssignGroup)
}

func (h *RolesHandler) HandleUnassignGroup(w http.ResponseWriter, r *http.Request) {
	h.assignment(w, r, "group", h.RoleService.UnassignGroup)
}

func (h *RolesHandler) HandleIsInRole(w http.ResponseWriter, r *http.Request) {
	ok, err := h.RoleService.IsInRole(r.Context(), r.PathValue("tenant"), r.PathValue("role"), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "failed to check role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.MembershipResponse{Member: ok})
}

func (h *RolesHandler) assignment(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	fn func(ctx context.Context, tenantRef, roleName, memberName string) (domain.Role, error),
) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	role, err := fn(ctx, r.PathValue("tenant"), r.PathValue("role"), r.PathValue(param))
	if err != nil {
		writeServiceError(w, r, err, "failed to change role assignment")
		return
	}
	writeVersioned(w, http.StatusOK, role.Version, toRole(role))
}
