/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file defines the main Router, applying middleware like logging, CORS and
IP-based rate limiting before delegating requests to specific handlers (API,
long-poll events and WebSocket events).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"cardparty/internal/pkg/auth/jwt"
	"cardparty/internal/pkg/limiter"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/resp"
)

const (
	RegisterRate  = 0.1
	RegisterBurst = 3
	CreateRate    = 0.05
	CreateBurst   = 2
	ConnectRate   = 0.2
	ConnectBurst  = 5
)

// Router sets up the HTTP routing table (chi.Router) for the application. It
// initializes IP-based rate limiters, configures CORS, and applies global and
// per-route middleware.
func Router(deps *AppDeps) http.Handler {
	registerLimiter := limiter.NewIPRateLimiter(rate.Limit(RegisterRate), RegisterBurst)
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(CreateRate), CreateBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Cardparty Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.With(registerLimiter.Middleware).Post("/auth/register", HandleRegister(deps))

		api.Group(func(authed chi.Router) {
			authed.Use(RequireSession(deps))

			authed.Post("/auth/logout", HandleLogout(deps))

			authed.Get("/events", HandleEvents(deps))
			authed.Post("/chat", HandleGlobalChat(deps))

			authed.Get("/cardsets", HandleListCardSets(deps))
			authed.Get("/cardsets/external/{id}", HandleGetExternalCardSet(deps))

			authed.With(createLimiter.Middleware).Post("/games", HandleCreateGame(deps))
			authed.Get("/games", HandleListGames(deps))
			authed.Get("/games/{id}", HandleGetGame(deps))
			authed.Post("/games/{id}/join", HandleJoinGame(deps))
			authed.Post("/games/{id}/spectate", HandleSpectateGame(deps))
			authed.Post("/games/{id}/leave", HandleLeaveGame(deps))
			authed.Put("/games/{id}/options", HandleUpdateGameOptions(deps))
			authed.Post("/games/{id}/chat", HandleGameChat(deps))
		})
	})

	r.Get("/ws/events", HandleWebSocketEvents(deps, wsUpgrader, connectLimiter))

	return r
}
