package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	jwtpkg "teamchat/internal/pkg/auth/jwt"
	"teamchat/internal/pkg/limiter"
	"teamchat/internal/pkg/logx"
	"teamchat/internal/pkg/resp"
)

// SetupRouter assembles the middleware chain and the route table.
func SetupRouter(deps *AppDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   deps.Cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(corsMiddleware.Handler)

	r.Use(jwtpkg.IdentityExtractorMiddleware(deps.Cfg.JWTSecret))

	apiLimiter := limiter.NewIPRateLimiter(rate.Limit(10), 20)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(1), 5)

	r.Get("/healthz", handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(wsLimiter.Middleware)
		r.Get("/ws", HandleWebSocket(deps))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiLimiter.Middleware)

		r.Get("/users", HandleListUsers(deps))
		r.Get("/users/me", HandleGetMe(deps))
		r.Get("/users/online", HandleListOnline(deps))

		r.Get("/inbox", HandleInbox(deps))

		r.Post("/rooms", HandleCreateRoom(deps))
		r.Get("/rooms/{roomUUID}", HandleRoomView(deps))
		r.Delete("/rooms/{roomUUID}", HandleDeleteRoom(deps))
		r.Post("/rooms/{roomUUID}/read", HandleMarkRead(deps))
		r.Get("/rooms/{roomUUID}/unread", HandleUnreadCount(deps))

		r.Get("/conversations/{userUUID}/messages", HandleDirectHistory(deps))
		r.Delete("/conversations/{userUUID}", HandleDeleteDirectConversation(deps))

		r.Post("/messages", HandleSendMessage(deps))
		r.Delete("/messages/{messageID}", HandleDeleteMessage(deps))

		r.Post("/files/upload-url", HandleUploadURL(deps))
		r.Get("/files/download-url", HandleDownloadURL(deps))
	})

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, map[string]string{"status": "ok"})
}
