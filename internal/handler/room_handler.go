package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/randx"
	"teamchat/internal/pkg/req"
	"teamchat/internal/pkg/resp"
)

type createRoomRequest struct {
	Name        string   `json:"name"`
	MemberUUIDs []string `json:"member_uuids"`
}

const maxRoomNameLen = 100

// HandleCreateRoom creates a group room with the requester and the listed
// members.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}

		var body createRoomRequest
		if customErr := req.BindJSON(r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// The name is optional; blank rooms get a display name composed from
		// their members wherever they are shown.
		body.Name = strings.TrimSpace(body.Name)
		if len(body.Name) > maxRoomNameLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		room, customErr := deps.Lifecycle.CreateRoom(r.Context(), payload.UserUUID, body.Name, body.MemberUUIDs)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, room)
	}
}

// HandleDeleteRoom archives the room's transcript and purges the room.
func HandleDeleteRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}
		roomUUID := chi.URLParam(r, "roomUUID")
		if !randx.IsValidIdentifier(roomUUID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		location, customErr := deps.Lifecycle.DeleteRoom(r.Context(), payload.UserUUID, roomUUID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, map[string]string{"archive": location})
	}
}

// HandleDeleteDirectConversation archives and removes the requester's
// conversation with a partner.
func HandleDeleteDirectConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}
		partnerUUID := chi.URLParam(r, "userUUID")
		if !randx.IsValidIdentifier(partnerUUID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		location, customErr := deps.Lifecycle.DeleteDirectConversation(r.Context(), payload.UserUUID, partnerUUID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, map[string]string{"archive": location})
	}
}
