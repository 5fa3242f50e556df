package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
	"github.com/aussiebroadwan/iam/pkg/slogx"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, iamsdk.ErrorCodeInvalidCredentials},

	{service.ErrTenantNotFound, http.StatusNotFound, iamsdk.ErrorCodeNotFound},
	{service.ErrUserNotFound, http.StatusNotFound, iamsdk.ErrorCodeNotFound},
	{service.ErrGroupNotFound, http.StatusNotFound, iamsdk.ErrorCodeNotFound},
	{service.ErrRoleNotFound, http.StatusNotFound, iamsdk.ErrorCodeNotFound},
	{domain.ErrInvitationNotFound, http.StatusNotFound, iamsdk.ErrorCodeNotFound},
	{store.ErrNotFound, http.StatusNotFound, iamsdk.ErrorCodeNotFound},

	{service.ErrTenantExists, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists},
	{service.ErrUsernameTaken, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists},
	{service.ErrGroupExists, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists},
	{service.ErrRoleExists, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists},
	{domain.ErrInvitationExists, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists},
	{store.ErrAlreadyExists, http.StatusConflict, iamsdk.ErrorCodeAlreadyExists},

	{domain.ErrInvalidValidity, http.StatusBadRequest, iamsdk.ErrorCodeInvalidRequest},

	{domain.ErrTenantNotActive, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrTenantMismatch, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrUserNotEnabled, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrGroupRecursion, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrNestingNotSupported, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{service.ErrReservedGroupName, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{service.ErrInvitationUnavailable, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrPasswordRequired, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrPasswordNotVerified, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrPasswordUnchanged, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrPasswordWeak, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
	{domain.ErrPasswordIsUsername, http.StatusUnprocessableEntity, iamsdk.ErrorCodeUnprocessable},
}

// writeServiceError maps a service error onto a status code and error code.
// Unmapped errors are logged and answered with a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var ve validx.ValidationErrors
	if errors.As(err, &ve) {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            iamsdk.ErrorCodeValidationFailed,
			ErrorDescription: "request failed validation",
			Fields:           ve.Fields(),
		})
		return
	}

	// A stale If-Match is a failed precondition; a write racing another
	// write without one is a plain conflict.
	if errors.Is(err, store.ErrVersionConflict) {
		status := http.StatusConflict
		if r.Header.Get("If-Match") != "" {
			status = http.StatusPreconditionFailed
		}
		httpx.WriteError(w, status, iamsdk.ErrorCodeVersionConflict, "entity was modified concurrently")
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			httpx.WriteError(w, m.status, m.code, m.err.Error())
			return
		}
	}

	slogx.FromContext(r.Context()).Error(action, slog.Any("error", err))
	httpx.WriteError(w, http.StatusInternalServerError, iamsdk.ErrorCodeServerError, "internal server error")
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, iamsdk.ErrorCodeInvalidRequest, desc)
}
