/*
Package handler wires the HTTP surface: REST endpoints, the websocket
upgrade, middleware, and routing.
*/
package handler

import (
	"net/http"

	"teamchat/internal/app/chat"
	"teamchat/internal/app/inbox"
	"teamchat/internal/app/lifecycle"
	"teamchat/internal/app/storage"
	"teamchat/internal/app/store"
	"teamchat/internal/configs"
	jwtpkg "teamchat/internal/pkg/auth/jwt"
	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/resp"
)

// AppDeps bundles every dependency the handlers need.
type AppDeps struct {
	Cfg       *configs.AppConfig
	Store     *store.Store
	Registry  *chat.Registry
	ChatSvc   *chat.Service
	Tracker   *inbox.Tracker
	Lifecycle *lifecycle.Manager

	// Storage is nil when no object store is configured; attachment
	// endpoints then answer with a storage failure.
	Storage *storage.Service
}

// requireIdentity returns the authenticated payload or writes the 401 and
// returns nil.
func requireIdentity(w http.ResponseWriter, r *http.Request) *jwtpkg.Payload {
	payload := jwtpkg.GetPayloadFromContext(r)
	if payload == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil
	}
	return payload
}
