/*
Package lifecycle creates and destroys conversations. Destruction is
archive-then-purge: the transcript must land in the archive sink before any
row is deleted, and an archive failure aborts the whole operation.
*/
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"teamchat/internal/app/archive"
	"teamchat/internal/app/db"
	"teamchat/internal/app/store"
	"teamchat/internal/app/user"
	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/randx"
)

// minRoomMembers is the smallest membership a group room may be created with,
// creator included.
const minRoomMembers = 2

// ManagerStore is the persistence surface the lifecycle manager needs.
type ManagerStore interface {
	CreateRoom(ctx context.Context, room store.Room, memberUUIDs []string) error
	GetRoom(ctx context.Context, roomUUID string) (store.Room, error)
	IsRoomMember(ctx context.Context, roomUUID, userUUID string) (bool, error)
	ListRoomMessages(ctx context.Context, roomUUID string) ([]store.Message, error)
	PurgeRoom(ctx context.Context, roomUUID string) error
	GetUserByUUID(ctx context.Context, userUUID string) (user.User, error)
	ListUsersByUUIDs(ctx context.Context, userUUIDs []string) ([]user.User, error)
	ListDirectMessages(ctx context.Context, userA, userB string) ([]store.Message, error)
	DeleteDirectMessages(ctx context.Context, userA, userB string) error
}

// Manager owns room creation and conversation destruction.
type Manager struct {
	store         ManagerStore
	sink          archive.Sink
	archivePrefix string
	logger        zerolog.Logger
}

func NewManager(managerStore ManagerStore, sink archive.Sink, archivePrefix string, logger zerolog.Logger) *Manager {
	return &Manager{
		store:         managerStore,
		sink:          sink,
		archivePrefix: archivePrefix,
		logger:        logger.With().Str("component", "lifecycle").Logger(),
	}
}

// CreateRoom creates a group room with the creator and the given members.
// The creator is always a member whether or not the list names them; the
// deduplicated membership must have at least two identities.
func (m *Manager) CreateRoom(ctx context.Context, creatorUUID, name string, memberUUIDs []string) (store.Room, *errs.CustomError) {
	members := dedupeMembers(creatorUUID, memberUUIDs)
	if len(members) < minRoomMembers {
		return store.Room{}, errs.NewError(errs.ErrRoomMembersTooFew, minRoomMembers)
	}
	for _, memberUUID := range members {
		if !randx.IsValidIdentifier(memberUUID) {
			return store.Room{}, errs.NewError(errs.ErrUserNotFound)
		}
	}

	known, err := m.store.ListUsersByUUIDs(ctx, members)
	if err != nil {
		m.logger.Error().Err(err).Msg("resolve room members")
		return store.Room{}, errs.NewError(errs.ErrStoreUnavailable)
	}
	if len(known) != len(members) {
		return store.Room{}, errs.NewError(errs.ErrUserNotFound)
	}

	room := store.Room{
		RoomUUID: randx.RoomID(),
		IsGroup:  true,
		Name:     name,
	}
	err = m.store.CreateRoom(ctx, room, members)
	if db.IsUniqueViolation(err) {
		// Identifier collision. One retry with a fresh identifier.
		room.RoomUUID = randx.RoomID()
		err = m.store.CreateRoom(ctx, room, members)
	}
	if err != nil {
		m.logger.Error().Err(err).Msg("create room")
		return store.Room{}, errs.NewError(errs.ErrStoreUnavailable)
	}

	created, err := m.store.GetRoom(ctx, room.RoomUUID)
	if err != nil {
		m.logger.Error().Err(err).Str("room_uuid", room.RoomUUID).Msg("fetch created room")
		return store.Room{}, errs.NewError(errs.ErrStoreUnavailable)
	}
	m.logger.Info().Str("room_uuid", created.RoomUUID).Int("members", len(members)).Msg("room created")
	return created, nil
}

// DeleteRoom archives a room's transcript and then purges every trace of
// the room. Only members may delete. If archiving fails nothing is deleted.
func (m *Manager) DeleteRoom(ctx context.Context, userUUID, roomUUID string) (string, *errs.CustomError) {
	if _, err := m.store.GetRoom(ctx, roomUUID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.NewError(errs.ErrRoomNotFound)
		}
		m.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("look up room")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}
	isMember, err := m.store.IsRoomMember(ctx, roomUUID, userUUID)
	if err != nil {
		m.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("check membership")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}
	if !isMember {
		return "", errs.NewError(errs.ErrNotRoomMember)
	}

	messages, err := m.store.ListRoomMessages(ctx, roomUUID)
	if err != nil {
		m.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("list room messages")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}

	// Group transcripts keep the raw sender identity as the label; rooms
	// outlive membership churn and identities stay resolvable, names do not.
	transcript := renderRawTranscript(messages)

	key := archive.TranscriptKey(m.archivePrefix, "room", roomUUID, time.Now())
	location, err := m.sink.Put(ctx, key, strings.NewReader(transcript))
	if err != nil {
		m.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("archive transcript")
		return "", errs.NewError(errs.ErrArchiveFailed)
	}

	if err := m.store.PurgeRoom(ctx, roomUUID); err != nil {
		m.logger.Error().Err(err).Str("room_uuid", roomUUID).Msg("purge room")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}

	m.logger.Info().Str("room_uuid", roomUUID).Str("archive", location).Msg("room deleted")
	return location, nil
}

// DeleteDirectConversation archives and removes every message between the
// requester and a partner, both directions.
func (m *Manager) DeleteDirectConversation(ctx context.Context, userUUID, partnerUUID string) (string, *errs.CustomError) {
	if _, err := m.store.GetUserByUUID(ctx, partnerUUID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.NewError(errs.ErrUserNotFound)
		}
		m.logger.Error().Err(err).Str("partner_uuid", partnerUUID).Msg("look up partner")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}

	messages, err := m.store.ListDirectMessages(ctx, userUUID, partnerUUID)
	if err != nil {
		m.logger.Error().Err(err).Str("partner_uuid", partnerUUID).Msg("list direct messages")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}

	transcript, customErr := m.renderTranscript(ctx, messages)
	if customErr != nil {
		return "", customErr
	}

	pair := fmt.Sprintf("%s_%s", userUUID, partnerUUID)
	key := archive.TranscriptKey(m.archivePrefix, "direct", pair, time.Now())
	location, err := m.sink.Put(ctx, key, strings.NewReader(transcript))
	if err != nil {
		m.logger.Error().Err(err).Str("partner_uuid", partnerUUID).Msg("archive transcript")
		return "", errs.NewError(errs.ErrArchiveFailed)
	}

	if err := m.store.DeleteDirectMessages(ctx, userUUID, partnerUUID); err != nil {
		m.logger.Error().Err(err).Str("partner_uuid", partnerUUID).Msg("delete direct messages")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}

	m.logger.Info().Str("partner_uuid", partnerUUID).Str("archive", location).Msg("direct conversation deleted")
	return location, nil
}

// renderRawTranscript formats messages oldest-first with the sender's raw
// identity as the label. Used for group rooms.
func renderRawTranscript(messages []store.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(FormatTranscriptLine(msg, nil))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderTranscript formats messages oldest-first, one line each, with the
// sender's display name. Unknown senders fall back to their identifier.
// Used for direct conversations.
func (m *Manager) renderTranscript(ctx context.Context, messages []store.Message) (string, *errs.CustomError) {
	senderSet := make(map[string]struct{}, len(messages))
	senderUUIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		if _, seen := senderSet[msg.SenderUUID]; seen {
			continue
		}
		senderSet[msg.SenderUUID] = struct{}{}
		senderUUIDs = append(senderUUIDs, msg.SenderUUID)
	}

	senders, err := m.store.ListUsersByUUIDs(ctx, senderUUIDs)
	if err != nil {
		m.logger.Error().Err(err).Msg("resolve transcript senders")
		return "", errs.NewError(errs.ErrStoreUnavailable)
	}
	names := make(map[string]string, len(senders))
	for _, u := range senders {
		names[u.UUID] = u.Name
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(FormatTranscriptLine(msg, names))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// FormatTranscriptLine renders one message as "[timestamp] sender: text".
// File-only messages render the file name in place of text.
func FormatTranscriptLine(msg store.Message, names map[string]string) string {
	sender := names[msg.SenderUUID]
	if sender == "" {
		sender = msg.SenderUUID
	}
	text := msg.Text
	if text == "" && msg.FileName != "" {
		text = "[file] " + msg.FileName
	}
	return fmt.Sprintf("[%s] %s: %s",
		msg.CreatedAt.UTC().Format("2006-01-02 15:04:05"), sender, text)
}

func dedupeMembers(creatorUUID string, memberUUIDs []string) []string {
	seen := map[string]struct{}{creatorUUID: {}}
	members := []string{creatorUUID}
	for _, memberUUID := range memberUUIDs {
		if _, ok := seen[memberUUID]; ok {
			continue
		}
		seen[memberUUID] = struct{}{}
		members = append(members, memberUUID)
	}
	return members
}
