/*
Package inbox answers "what has this user not seen yet": per-room read
marks, unread counts, conversation history, and the merged inbox of group
rooms and direct conversations ordered by recency.
*/
package inbox

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"teamchat/internal/app/store"
	"teamchat/internal/app/user"
	"teamchat/internal/pkg/errs"
)

// TrackerStore is the persistence surface the tracker needs.
type TrackerStore interface {
	GetRoom(ctx context.Context, roomUUID string) (store.Room, error)
	IsRoomMember(ctx context.Context, roomUUID, userUUID string) (bool, error)
	ListGroupRoomsForUser(ctx context.Context, userUUID string) ([]store.Room, error)
	ListRoomMemberUUIDs(ctx context.Context, roomUUID string) ([]string, error)
	LastRoomMessage(ctx context.Context, roomUUID string) (store.Message, bool, error)
	CountUnread(ctx context.Context, userUUID, roomUUID string) (int, error)
	UpsertReadMark(ctx context.Context, userUUID, roomUUID string, at time.Time) error
	ListRoomMessages(ctx context.Context, roomUUID string) ([]store.Message, error)
	ListDirectMessages(ctx context.Context, userA, userB string) ([]store.Message, error)
	ListLatestDirectMessages(ctx context.Context, userUUID string) ([]store.Message, error)
	GetUserByUUID(ctx context.Context, userUUID string) (user.User, error)
	ListUsersByUUIDs(ctx context.Context, userUUIDs []string) ([]user.User, error)
}

// Tracker implements read-state tracking and inbox assembly.
type Tracker struct {
	store  TrackerStore
	logger zerolog.Logger
}

func NewTracker(trackerStore TrackerStore, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  trackerStore,
		logger: logger.With().Str("component", "inbox").Logger(),
	}
}

// EntryKind distinguishes the two inbox entry flavors.
type EntryKind string

const (
	KindRoom   EntryKind = "room"
	KindDirect EntryKind = "direct"
)

// Entry is one conversation in the merged inbox.
type Entry struct {
	Kind        EntryKind     `json:"kind"`
	RoomUUID    string        `json:"room_uuid,omitempty"`
	RoomName    string        `json:"room_name,omitempty"`
	PartnerUUID string        `json:"partner_uuid,omitempty"`
	PartnerName string        `json:"partner_name,omitempty"`
	LastMessage store.Message `json:"last_message"`
	Unread      int           `json:"unread"`
	Timestamp   time.Time     `json:"timestamp"`
}

// MarkRead records that the user has seen the room up to the given time.
// Membership is required; read marks never outlive membership checks.
func (t *Tracker) MarkRead(ctx context.Context, userUUID, roomUUID string, at time.Time) *errs.CustomError {
	if customErr := t.requireMembership(ctx, userUUID, roomUUID); customErr != nil {
		return customErr
	}
	if err := t.store.UpsertReadMark(ctx, userUUID, roomUUID, at); err != nil {
		t.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("upsert read mark")
		return errs.NewError(errs.ErrStoreUnavailable)
	}
	return nil
}

// Unread returns the user's unread count for one room. Messages the user
// sent never count, regardless of the read mark.
func (t *Tracker) Unread(ctx context.Context, userUUID, roomUUID string) (int, *errs.CustomError) {
	if customErr := t.requireMembership(ctx, userUUID, roomUUID); customErr != nil {
		return 0, customErr
	}
	count, err := t.store.CountUnread(ctx, userUUID, roomUUID)
	if err != nil {
		t.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("count unread")
		return 0, errs.NewError(errs.ErrStoreUnavailable)
	}
	return count, nil
}

// RoomHistory returns a room's full transcript, oldest first, and marks the
// room read as of now. Entering a room is the implicit read acknowledgment;
// a failed mark degrades to a log line rather than failing the fetch.
func (t *Tracker) RoomHistory(ctx context.Context, userUUID, roomUUID string) ([]store.Message, *errs.CustomError) {
	if customErr := t.requireMembership(ctx, userUUID, roomUUID); customErr != nil {
		return nil, customErr
	}

	messages, err := t.store.ListRoomMessages(ctx, roomUUID)
	if err != nil {
		t.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("list room messages")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	if err := t.store.UpsertReadMark(ctx, userUUID, roomUUID, time.Now()); err != nil {
		t.logger.Warn().Err(err).Str("room_uuid", roomUUID).Msg("implicit read mark")
	}
	return messages, nil
}

// DirectHistory returns the two-party conversation, oldest first, covering
// both addressing directions.
func (t *Tracker) DirectHistory(ctx context.Context, userUUID, partnerUUID string) ([]store.Message, *errs.CustomError) {
	if _, err := t.store.GetUserByUUID(ctx, partnerUUID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		t.logger.Error().Err(err).Str("partner_uuid", partnerUUID).Msg("look up partner")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	messages, err := t.store.ListDirectMessages(ctx, userUUID, partnerUUID)
	if err != nil {
		t.logger.Error().Err(err).Str("partner_uuid", partnerUUID).Msg("list direct messages")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}
	return messages, nil
}

// ListInbox merges the user's group rooms and direct conversations into one
// list, most recent activity first. Group rooms with no messages yet are
// omitted; direct conversations exist only once a message does.
func (t *Tracker) ListInbox(ctx context.Context, userUUID string) ([]Entry, *errs.CustomError) {
	entries := make([]Entry, 0)

	rooms, err := t.store.ListGroupRoomsForUser(ctx, userUUID)
	if err != nil {
		t.logger.Error().Err(err).Msg("list group rooms")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	for _, room := range rooms {
		last, found, err := t.store.LastRoomMessage(ctx, room.RoomUUID)
		if err != nil {
			t.logger.Error().Err(err).Str("room_uuid", room.RoomUUID).Msg("last room message")
			return nil, errs.NewError(errs.ErrStoreUnavailable)
		}
		if !found {
			continue
		}
		unread, err := t.store.CountUnread(ctx, userUUID, room.RoomUUID)
		if err != nil {
			t.logger.Error().Err(err).Str("room_uuid", room.RoomUUID).Msg("count unread")
			return nil, errs.NewError(errs.ErrStoreUnavailable)
		}
		roomName := room.Name
		if roomName == "" {
			roomName, err = t.composeRoomName(ctx, userUUID, room.RoomUUID)
			if err != nil {
				t.logger.Error().Err(err).Str("room_uuid", room.RoomUUID).Msg("compose room name")
				return nil, errs.NewError(errs.ErrStoreUnavailable)
			}
		}
		entries = append(entries, Entry{
			Kind:        KindRoom,
			RoomUUID:    room.RoomUUID,
			RoomName:    roomName,
			LastMessage: last,
			Unread:      unread,
			Timestamp:   last.CreatedAt,
		})
	}

	latest, err := t.store.ListLatestDirectMessages(ctx, userUUID)
	if err != nil {
		t.logger.Error().Err(err).Msg("list latest direct messages")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	partnerUUIDs := make([]string, 0, len(latest))
	for _, msg := range latest {
		partnerUUIDs = append(partnerUUIDs, directPartner(msg, userUUID))
	}
	partnerNames, customErr := t.resolveNames(ctx, partnerUUIDs)
	if customErr != nil {
		return nil, customErr
	}

	for _, msg := range latest {
		partnerUUID := directPartner(msg, userUUID)
		entries = append(entries, Entry{
			Kind:        KindDirect,
			PartnerUUID: partnerUUID,
			PartnerName: partnerNames[partnerUUID],
			LastMessage: msg,
			Timestamp:   msg.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func (t *Tracker) requireMembership(ctx context.Context, userUUID, roomUUID string) *errs.CustomError {
	if _, err := t.store.GetRoom(ctx, roomUUID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NewError(errs.ErrRoomNotFound)
		}
		t.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("look up room")
		return errs.NewError(errs.ErrStoreUnavailable)
	}
	isMember, err := t.store.IsRoomMember(ctx, roomUUID, userUUID)
	if err != nil {
		t.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("check membership")
		return errs.NewError(errs.ErrStoreUnavailable)
	}
	if !isMember {
		return errs.NewError(errs.ErrNotRoomMember)
	}
	return nil
}

// composeRoomName builds a display name for a nameless room from the other
// members' names, in membership order.
func (t *Tracker) composeRoomName(ctx context.Context, viewerUUID, roomUUID string) (string, error) {
	memberUUIDs, err := t.store.ListRoomMemberUUIDs(ctx, roomUUID)
	if err != nil {
		return "", err
	}
	members, err := t.store.ListUsersByUUIDs(ctx, memberUUIDs)
	if err != nil {
		return "", err
	}
	return ComposeRoomName(members, viewerUUID), nil
}

// ComposeRoomName joins the names of every member except the viewer. Rooms
// created without a name are shown this way.
func ComposeRoomName(members []user.User, viewerUUID string) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		if m.UUID == viewerUUID {
			continue
		}
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}

func (t *Tracker) resolveNames(ctx context.Context, userUUIDs []string) (map[string]string, *errs.CustomError) {
	users, err := t.store.ListUsersByUUIDs(ctx, userUUIDs)
	if err != nil {
		t.logger.Error().Err(err).Msg("resolve partner names")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UUID] = u.Name
	}
	return names, nil
}

func directPartner(msg store.Message, userUUID string) string {
	if msg.SenderUUID == userUUID {
		return msg.ReceiverUUID
	}
	return msg.SenderUUID
}
