package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"teamchat/internal/app/chat"
	"teamchat/internal/app/inbox"
	"teamchat/internal/app/store"
	"teamchat/internal/app/user"
	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/randx"
	"teamchat/internal/pkg/req"
	"teamchat/internal/pkg/resp"
)

type sendMessageRequest struct {
	ReceiverUUID string `json:"receiver_uuid,omitempty"`
	RoomUUID     string `json:"room_uuid,omitempty"`
	Text         string `json:"text,omitempty"`
	FileKey      string `json:"file_key,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	FileType     string `json:"file_type,omitempty"`
}

// HandleSendMessage is the REST send path. It runs the same pipeline as the
// realtime channel: validate, persist, fan out to live connections.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}

		var body sendMessageRequest
		if customErr := req.BindJSON(r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, customErr := deps.ChatSvc.Send(r.Context(), payload.UserUUID, chat.SendInput{
			ReceiverUUID: body.ReceiverUUID,
			RoomUUID:     body.RoomUUID,
			Text:         body.Text,
			FileKey:      body.FileKey,
			FileName:     body.FileName,
			FileType:     body.FileType,
		})
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, msg)
	}
}

// HandleInbox returns the merged conversation list, most recent first.
func HandleInbox(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}

		entries, customErr := deps.Tracker.ListInbox(r.Context(), payload.UserUUID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, entries)
	}
}

type roomView struct {
	Room     store.Room      `json:"room"`
	Members  []user.User     `json:"members"`
	Messages []store.Message `json:"messages"`
}

// HandleRoomView returns a room with its members and full transcript, and
// marks the room read for the requester.
func HandleRoomView(deps *AppDeps) http.HandlerFunc {
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

		messages, customErr := deps.Tracker.RoomHistory(r.Context(), payload.UserUUID, roomUUID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		members, err := resolveRoomMembers(r.Context(), deps, roomUUID)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("room_uuid", roomUUID).Msg("resolve room members")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		room, err := deps.Store.GetRoom(r.Context(), roomUUID)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("room_uuid", roomUUID).Msg("fetch room")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		if room.Name == "" {
			room.Name = inbox.ComposeRoomName(members, payload.UserUUID)
		}

		resp.RespondSuccess(w, r, roomView{Room: room, Members: members, Messages: messages})
	}
}

func resolveRoomMembers(ctx context.Context, deps *AppDeps, roomUUID string) ([]user.User, error) {
	memberUUIDs, err := deps.Store.ListRoomMemberUUIDs(ctx, roomUUID)
	if err != nil {
		return nil, err
	}
	return deps.Store.ListUsersByUUIDs(ctx, memberUUIDs)
}

// HandleMarkRead explicitly marks a room read as of now.
func HandleMarkRead(deps *AppDeps) http.HandlerFunc {
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

		if customErr := deps.Tracker.MarkRead(r.Context(), payload.UserUUID, roomUUID, time.Now()); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, nil)
	}
}

// HandleUnreadCount returns the requester's unread count for one room.
func HandleUnreadCount(deps *AppDeps) http.HandlerFunc {
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

		count, customErr := deps.Tracker.Unread(r.Context(), payload.UserUUID, roomUUID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, map[string]int{"unread": count})
	}
}

// HandleDirectHistory returns the two-party conversation with a partner.
func HandleDirectHistory(deps *AppDeps) http.HandlerFunc {
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

		messages, customErr := deps.Tracker.DirectHistory(r.Context(), payload.UserUUID, partnerUUID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, messages)
	}
}

// HandleDeleteMessage removes one message the requester sent.
func HandleDeleteMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := requireIdentity(w, r)
		if payload == nil {
			return
		}

		messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
		if err != nil || messageID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		msg, customErr := deps.ChatSvc.Delete(r.Context(), payload.UserUUID, messageID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// The row is gone; removing the attachment object is best effort.
		if msg.FileKey != "" && deps.Storage != nil {
			if err := deps.Storage.DeleteObject(r.Context(), msg.FileKey); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("file_key", msg.FileKey).Msg("delete attachment object")
			}
		}
		resp.RespondSuccess(w, r, nil)
	}
}
