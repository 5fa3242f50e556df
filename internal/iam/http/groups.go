package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

type GroupsHandler struct {
	GroupService *service.GroupService
}

func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.CreateGroupRequest
	if !decode(w, r, &req) {
		return
	}

	g, err := h.GroupService.Create(r.Context(), r.PathValue("tenant"), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err, "failed to create group")
		return
	}
	writeVersioned(w, http.StatusCreated, g.Version, toGroup(g))
}

func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.GroupService.List(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list groups")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.ListGroupsResponse{Groups: mapSlice(groups, toGroup)})
}

func (h *GroupsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	g, err := h.GroupService.Get(r.Context(), r.PathValue("tenant"), r.PathValue("group"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get group")
		return
	}
	writeVersioned(w, http.StatusOK, g.Version, toGroup(g))
}

func (h *GroupsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req iamsdk.UpdateGroupRequest
	if !decode(w, r, &req) {
		return
	}

	g, err := h.GroupService.UpdateDescription(ctx, r.PathValue("tenant"), r.PathValue("group"), req.Description)
	if err != nil {
		writeServiceError(w, r, err, "failed to update group")
		return
	}
	writeVersioned(w, http.StatusOK, g.Version, toGroup(g))
}

func (h *GroupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.GroupService.Delete(ctx, r.PathValue("tenant"), r.PathValue("group")); err != nil {
		writeServiceError(w, r, err, "failed to delete group")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupsHandler) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "username", h.GroupService.AddUser)
}

func (h *GroupsHandler) HandleRemoveUser(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "username", h.GroupService.RemoveUser)
}

func (h *GroupsHandler) HandleAddGroup(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "member", h.GroupService.AddGroup)
}

func (h *GroupsHandler) HandleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "member", h.GroupService.RemoveGroup)
}

// HandleIsMember resolves membership through nested groups.
func (h *GroupsHandler) HandleIsMember(w http.ResponseWriter, r *http.Request) {
	ok, err := h.GroupService.IsMember(r.Context(), r.PathValue("tenant"), r.PathValue("group"), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "failed to check group membership")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.MembershipResponse{Member: ok})
}

// membership applies fn to the group and the member named by the param
// path wildcard.
func (h *GroupsHandler) membership(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	fn func(ctx context.Context, tenantRef, groupName, memberName string) (domain.Group, error),
) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	g, err := fn(ctx, r.PathValue("tenant"), r.PathValue("group"), r.PathValue(param))
	if err != nil {
		writeServiceError(w, r, err, "failed to change group membership")
		return
	}
	writeVersioned(w, http.StatusOK, g.Version, toGroup(g))
}
