package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/resp"
)

// HandleListUsers returns the approved user directory.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		users, err := deps.Store.ListApprovedUsers(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		resp.RespondSuccess(w, r, users)
	}
}

// HandleGetMe returns the requester's own directory row.
func HandleGetMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}

		u, err := deps.Store.GetUserByUUID(r.Context(), payload.UserUUID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("get own user")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		resp.RespondSuccess(w, r, u)
	}
}

// HandleListOnline returns the identities currently holding a live
// connection.
func HandleListOnline(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireIdentity(w, r) == nil {
			return
		}

		identities := deps.Registry.ListOnlineIdentities()
		users, err := deps.Store.ListUsersByUUIDs(r.Context(), identities)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("resolve online users")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		resp.RespondSuccess(w, r, users)
	}
}
