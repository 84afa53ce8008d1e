package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/internal/forum/service"
	"github.com/shelfside/bookforum/internal/forum/store"
	"github.com/shelfside/bookforum/pkg/httpx"
	"github.com/shelfside/bookforum/pkg/jwtx"
	"github.com/shelfside/bookforum/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.Keys
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	RegisterService  *service.RegisterService
	LoginService     *service.LoginService
	InviteService    *service.InviteService
	PostService      *service.PostService
	CommunityService *service.CommunityService
	FollowService    *service.FollowService
}

func NewRouter(keys *jwtx.Keys, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerInvites()
	r.registerPosts()
	r.registerCommunities()
	r.registerFollows()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	registerHandler := &RegisterHandler{RegisterService: r.RegisterService}
	loginHandler := &LoginHandler{LoginService: r.LoginService}

	// Registration and both login steps are credential endpoints: strict
	// rate limit by IP.
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login/password",
		httpx.Chain(http.HandlerFunc(loginHandler.HandlePassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login/totp",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleTOTP),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InviteHandler{InviteService: r.InviteService}

	// POST /v1/invites/journalist - moderator-only mint, moderate limit.
	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(r.keys),
		httpx.RequireModerator(),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/invites/journalist", secured)
}

func (r *Router) registerPosts() {
	h := &PostsHandler{PostService: r.PostService}

	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.keys),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)

	// Delete is authenticated here; the moderator decision lives in the
	// service so the policy check happens in exactly one place.
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.keys),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/posts", securedCreate)
	r.Mux.Handle("DELETE /v1/posts/{id}", securedDelete)

	// Public reads, lenient limits.
	r.Mux.Handle("GET /v1/topics/{id}/posts",
		httpx.Chain(http.HandlerFunc(h.HandleListForKind(domain.TargetTopic)),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/communities/{id}/posts",
		httpx.Chain(http.HandlerFunc(h.HandleListForKind(domain.TargetCommunity)),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/profiles/{id}/posts",
		httpx.Chain(http.HandlerFunc(h.HandleListForKind(domain.TargetProfile)),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerCommunities() {
	h := &CommunitiesHandler{CommunityService: r.CommunityService}

	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.keys),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/communities", securedCreate)
	r.Mux.Handle("GET /v1/communities",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/topics",
		httpx.Chain(http.HandlerFunc(h.HandleListTopics),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerFollows() {
	h := &FollowsHandler{FollowService: r.FollowService}

	securedFollow := httpx.Chain(http.HandlerFunc(h.HandleFollow),
		httpx.AuthnMiddleware(r.keys),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	securedUnfollow := httpx.Chain(http.HandlerFunc(h.HandleUnfollow),
		httpx.AuthnMiddleware(r.keys),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	securedFeed := httpx.Chain(http.HandlerFunc(h.HandleFeed),
		httpx.AuthnMiddleware(r.keys),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /v1/follows/{id}", securedFollow)
	r.Mux.Handle("DELETE /v1/follows/{id}", securedUnfollow)
	r.Mux.Handle("GET /v1/feed", securedFeed)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// actorFromCtx rebuilds the acting account from the verified session
// claims. The moderator flag and role are read from the token, so a flag
// flip applies on the next login, not mid-session.
func actorFromCtx(r *http.Request) (domain.Account, bool) {
	claims, ok := httpx.SessionFromCtx(r.Context())
	if !ok {
		return domain.Account{}, false
	}
	return domain.Account{
		ID:        claims.Subject,
		Username:  claims.Username,
		Role:      domain.Role(claims.Role),
		Moderator: claims.Moderator,
	}, true
}
