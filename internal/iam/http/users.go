package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

type UsersHandler struct {
	UserService *service.UserService
	RoleService *service.RoleService
}

// HandleRegister registers a user through an invitation. A missing
// enablement registers the user enabled with no activity window.
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.RegisterUserRequest
	if !decode(w, r, &req) {
		return
	}

	enablement := domain.IndefiniteEnablement()
	if req.Enablement != nil {
		e, err := fromEnablement(*req.Enablement)
		if err != nil {
			writeServiceError(w, r, err, "invalid enablement")
			return
		}
		enablement = e
	}

	u, err := h.UserService.Register(r.Context(), r.PathValue("tenant"), service.Registration{
		Invitation: req.Invitation,
		Username:   req.Username,
		Password:   req.Password,
		Enablement: enablement,
		Person: domain.Person{
			Name:    fromName(req.Name),
			Contact: fromContact(req.Contact),
		},
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to register user")
		return
	}
	writeVersioned(w, http.StatusCreated, u.Version, toUser(u))
}

// HandleList lists users, narrowed to a name prefix search when first or
// last is given.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		tenant = r.PathValue("tenant")
		q      = r.URL.Query()
		users  []domain.User
		err    error
	)
	if q.Has("first") || q.Has("last") {
		users, err = h.UserService.SearchSimilarlyNamed(r.Context(), tenant, q.Get("first"), q.Get("last"))
	} else {
		users, err = h.UserService.List(r.Context(), tenant)
	}
	if err != nil {
		writeServiceError(w, r, err, "failed to list users")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.ListUsersResponse{Users: mapSlice(users, toUser)})
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.Get(r.Context(), r.PathValue("tenant"), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get user")
		return
	}
	writeVersioned(w, http.StatusOK, u.Version, toUser(u))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.UserService.Delete(ctx, r.PathValue("tenant"), r.PathValue("username")); err != nil {
		writeServiceError(w, r, err, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req iamsdk.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	err = h.UserService.ChangePassword(ctx, r.PathValue("tenant"), r.PathValue("username"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err, "failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) HandleChangeName(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.Name
	h.update(w, r, &req, func(ctx context.Context, tenant, username string) (domain.User, error) {
		return h.UserService.ChangePersonalName(ctx, tenant, username, fromName(req))
	})
}

func (h *UsersHandler) HandleChangeContact(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.Contact
	h.update(w, r, &req, func(ctx context.Context, tenant, username string) (domain.User, error) {
		return h.UserService.ChangeContactInformation(ctx, tenant, username, fromContact(req))
	})
}

func (h *UsersHandler) HandleDefineEnablement(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.Enablement
	h.update(w, r, &req, func(ctx context.Context, tenant, username string) (domain.User, error) {
		e, err := fromEnablement(req)
		if err != nil {
			return domain.User{}, err
		}
		return h.UserService.DefineEnablement(ctx, tenant, username, e)
	})
}

// HandleAuthenticate checks a password. Every failure other than an inactive
// tenant answers 401 invalid_credentials.
func (h *UsersHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req iamsdk.AuthenticateRequest
	if !decode(w, r, &req) {
		return
	}

	desc, err := h.UserService.Authenticate(r.Context(), r.PathValue("tenant"), r.PathValue("username"), req.Password)
	if err != nil {
		writeServiceError(w, r, err, "failed to authenticate user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.UserDescriptor{
		TenantID: desc.TenantID,
		Username: desc.Username,
		Email:    desc.Email,
	})
}

func (h *UsersHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleService.ListUserRoles(r.Context(), r.PathValue("tenant"), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list user roles")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.ListRolesResponse{Roles: mapSlice(roles, toRole)})
}

// update decodes body, runs fn with the conditional context and answers
// with the updated user.
func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request, body any, fn func(ctx context.Context, tenant, username string) (domain.User, error)) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if !decode(w, r, body) {
		return
	}

	u, err := fn(ctx, r.PathValue("tenant"), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "failed to update user")
		return
	}
	writeVersioned(w, http.StatusOK, u.Version, toUser(u))
}
