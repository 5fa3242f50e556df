package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
	"github.com/aussiebroadwan/iam/pkg/jwtx"
	"github.com/aussiebroadwan/iam/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.RateLimitProfiles

	store         store.Store
	TenantService *service.TenantService
	UserService   *service.UserService
	GroupService  *service.GroupService
	RoleService   *service.RoleService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	limits httpx.RateLimitProfiles,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTenants()
	r.registerInvitations()
	r.registerUsers()
	r.registerGroups()
	r.registerRoles()
	r.registerSystem()
}

// ServeHTTP applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with latency instrumentation outermost.
func (r *Router) handle(pattern string, h http.HandlerFunc, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, instrument(pattern, httpx.Chain(h, mws...)))
}

// read guards admin reads: lenient limit per token subject.
func (r *Router) read() []httpx.Middleware {
	return []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(iamsdk.ScopeRead),
		httpx.RateLimitBySubject(r.limits.Lenient),
	}
}

// write guards admin mutations: moderate limit per token subject.
func (r *Router) write() []httpx.Middleware {
	return []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(iamsdk.ScopeWrite),
		httpx.RateLimitBySubject(r.limits.Moderate),
	}
}

func (r *Router) registerTenants() {
	h := &TenantsHandler{TenantService: r.TenantService}

	r.handle("POST /v1/tenants", h.HandleCreate, r.write()...)
	r.handle("GET /v1/tenants", h.HandleList, r.read()...)
	r.handle("GET /v1/tenants/{tenant}", h.HandleGet, r.read()...)
	r.handle("PATCH /v1/tenants/{tenant}", h.HandleUpdate, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}", h.HandleDelete, r.write()...)
	r.handle("POST /v1/tenants/{tenant}/activate", h.HandleActivate, r.write()...)
	r.handle("POST /v1/tenants/{tenant}/deactivate", h.HandleDeactivate, r.write()...)
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{TenantService: r.TenantService}

	r.handle("POST /v1/tenants/{tenant}/invitations", h.HandleOffer, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/invitations", h.HandleList, r.read()...)
	r.handle("PUT /v1/tenants/{tenant}/invitations/{identifier}", h.HandleRedefine, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}/invitations/{identifier}", h.HandleWithdraw, r.write()...)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, RoleService: r.RoleService}

	r.handle("POST /v1/tenants/{tenant}/users", h.HandleRegister, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/users", h.HandleList, r.read()...)
	r.handle("GET /v1/tenants/{tenant}/users/{username}", h.HandleGet, r.read()...)
	r.handle("DELETE /v1/tenants/{tenant}/users/{username}", h.HandleDelete, r.write()...)
	r.handle("PUT /v1/tenants/{tenant}/users/{username}/name", h.HandleChangeName, r.write()...)
	r.handle("PUT /v1/tenants/{tenant}/users/{username}/contact", h.HandleChangeContact, r.write()...)
	r.handle("PUT /v1/tenants/{tenant}/users/{username}/enablement", h.HandleDefineEnablement, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/users/{username}/roles", h.HandleListRoles, r.read()...)

	// Password checks are limited per client IP and account to slow down
	// guessing.
	r.handle("PUT /v1/tenants/{tenant}/users/{username}/password", h.HandleChangePassword,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(iamsdk.ScopeWrite),
		httpx.RateLimitByIPAndPath(r.limits.Strict, "tenant", "username"),
	)
	r.handle("POST /v1/tenants/{tenant}/users/{username}/authenticate", h.HandleAuthenticate,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(iamsdk.ScopeAuthenticate),
		httpx.RateLimitByIPAndPath(r.limits.Strict, "tenant", "username"),
	)
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}

	r.handle("POST /v1/tenants/{tenant}/groups", h.HandleCreate, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/groups", h.HandleList, r.read()...)
	r.handle("GET /v1/tenants/{tenant}/groups/{group}", h.HandleGet, r.read()...)
	r.handle("PATCH /v1/tenants/{tenant}/groups/{group}", h.HandleUpdate, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}/groups/{group}", h.HandleDelete, r.write()...)
	r.handle("PUT /v1/tenants/{tenant}/groups/{group}/users/{username}", h.HandleAddUser, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}/groups/{group}/users/{username}", h.HandleRemoveUser, r.write()...)
	r.handle("PUT /v1/tenants/{tenant}/groups/{group}/groups/{member}", h.HandleAddGroup, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}/groups/{group}/groups/{member}", h.HandleRemoveGroup, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/groups/{group}/members/{username}", h.HandleIsMember, r.read()...)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RoleService: r.RoleService}

	r.handle("POST /v1/tenants/{tenant}/roles", h.HandleCreate, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/roles", h.HandleList, r.read()...)
	r.handle("GET /v1/tenants/{tenant}/roles/{role}", h.HandleGet, r.read()...)
	r.handle("DELETE /v1/tenants/{tenant}/roles/{role}", h.HandleDelete, r.write()...)
	r.handle("PUT /v1/tenants/{tenant}/roles/{role}/users/{username}", h.HandleAssignUser, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}/roles/{role}/users/{username}", h.HandleUnassignUser, r.write()...)
	r.handle("GET /v1/tenants/{tenant}/roles/{role}/users/{username}", h.HandleIsInRole, r.read()...)
	r.handle("PUT /v1/tenants/{tenant}/roles/{role}/groups/{group}", h.HandleAssignGroup, r.write()...)
	r.handle("DELETE /v1/tenants/{tenant}/roles/{role}/groups/{group}", h.HandleUnassignGroup, r.write()...)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(promhttp.Handler(),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
}
