package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

// InvitationsHandler manages a tenant's registration invitations. The
// invitation path segment matches an identifier or a description.
type InvitationsHandler struct {
	TenantService *service.TenantService
}

func (h *InvitationsHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req iamsdk.OfferInvitationRequest
	if !decode(w, r, &req) {
		return
	}

	inv, err := h.TenantService.OfferInvitation(ctx, r.PathValue("tenant"), req.Description)
	if err != nil {
		writeServiceError(w, r, err, "failed to offer invitation")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvitation(inv))
}

// HandleList lists available invitations, or unavailable ones with
// ?available=false.
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	available := true
	if raw := r.URL.Query().Get("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, "available must be true or false")
			return
		}
		available = v
	}

	invs, err := h.TenantService.ListInvitations(r.Context(), r.PathValue("tenant"), available)
	if err != nil {
		writeServiceError(w, r, err, "failed to list invitations")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, iamsdk.ListInvitationsResponse{Invitations: mapSlice(invs, toInvitation)})
}

func (h *InvitationsHandler) HandleRedefine(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req iamsdk.RedefineInvitationRequest
	if !decode(w, r, &req) {
		return
	}

	validity := domain.Validity{From: utc(req.From), Until: utc(req.Until)}
	inv, err := h.TenantService.RedefineInvitation(ctx, r.PathValue("tenant"), r.PathValue("identifier"), validity)
	if err != nil {
		writeServiceError(w, r, err, "failed to redefine invitation")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInvitation(inv))
}

func (h *InvitationsHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx, err := conditional(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.TenantService.WithdrawInvitation(ctx, r.PathValue("tenant"), r.PathValue("identifier")); err != nil {
		writeServiceError(w, r, err, "failed to withdraw invitation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
