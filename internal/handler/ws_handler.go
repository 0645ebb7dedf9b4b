package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"teamchat/internal/app/chat"
	"teamchat/internal/pkg/logx"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
)

// HandleWebSocket upgrades the connection and starts the client pumps. The
// connection stays anonymous until it sends a valid authenticate event.
func HandleWebSocket(deps *AppDeps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
		CheckOrigin:     originChecker(deps.Cfg.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade")
			return
		}

		client := chat.NewClient(conn, deps.Registry, deps.ChatSvc, deps.Cfg.JWTSecret, *logx.Logger())
		go client.WritePump()
		go client.ReadPump()
	}
}

// originChecker allows same-origin requests plus the configured origins. An
// empty allowlist accepts everything, which only development should use.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == origin || a == "*" {
				return true
			}
		}
		return false
	}
}
