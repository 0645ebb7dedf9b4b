package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const messageColumns = `id, sender_uuid::text, receiver_uuid::text, room_uuid::text,
	message_text, file_key, file_name, file_type, created_at`

func scanMessage(row interface{ Scan(...any) error }) (Message, error) {
	var m Message
	var receiver, room, text, fileKey, fileName, fileType pgtype.Text

	err := row.Scan(&m.ID, &m.SenderUUID, &receiver, &room,
		&text, &fileKey, &fileName, &fileType, &m.CreatedAt)
	if err != nil {
		return Message{}, err
	}

	m.ReceiverUUID = receiver.String
	m.RoomUUID = room.String
	m.Text = text.String
	m.FileKey = fileKey.String
	m.FileName = fileName.String
	m.FileType = fileType.String
	return m, nil
}

func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// InsertMessage persists a message and returns it with the assigned id and
// commit timestamp. The timestamp, not arrival order, is the conversation
// order of record.
func (s *Store) InsertMessage(ctx context.Context, m Message) (Message, error) {
	var receiverParam, roomParam any
	if m.ReceiverUUID != "" {
		receiverParam = m.ReceiverUUID
	}
	if m.RoomUUID != "" {
		roomParam = m.RoomUUID
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_uuid, receiver_uuid, room_uuid, message_text, file_key, file_name, file_type)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		m.SenderUUID, receiverParam, roomParam,
		nullableText(m.Text), nullableText(m.FileKey),
		nullableText(m.FileName), nullableText(m.FileType))

	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// GetMessage fetches one message by id. Returns pgx.ErrNoRows when absent.
func (s *Store) GetMessage(ctx context.Context, id int64) (Message, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)

	m, err := scanMessage(row)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// DeleteMessage removes one message row.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) listMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListRoomMessages returns a room's full history, ascending by timestamp.
func (s *Store) ListRoomMessages(ctx context.Context, roomUUID string) ([]Message, error) {
	return s.listMessages(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE room_uuid = $1::uuid
		 ORDER BY created_at ASC, id ASC`,
		roomUUID)
}

// ListDirectMessages returns the conversation between two identities in both
// addressing directions, ascending by timestamp.
func (s *Store) ListDirectMessages(ctx context.Context, userA, userB string) ([]Message, error) {
	return s.listMessages(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE room_uuid IS NULL
		   AND ((sender_uuid = $1::uuid AND receiver_uuid = $2::uuid)
		     OR (sender_uuid = $2::uuid AND receiver_uuid = $1::uuid))
		 ORDER BY created_at ASC, id ASC`,
		userA, userB)
}

// LastRoomMessage returns the most recent message in a room, or found=false
// when the room has no messages yet.
func (s *Store) LastRoomMessage(ctx context.Context, roomUUID string) (Message, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE room_uuid = $1::uuid
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		roomUUID)

	m, err := scanMessage(row)
	if err == pgx.ErrNoRows {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, fmt.Errorf("last room message: %w", err)
	}
	return m, true, nil
}

// ListLatestDirectMessages returns, for each direct-conversation partner of
// the given user, the most recent message of that conversation.
func (s *Store) ListLatestDirectMessages(ctx context.Context, userUUID string) ([]Message, error) {
	return s.listMessages(ctx,
		`SELECT DISTINCT ON (LEAST(sender_uuid, receiver_uuid), GREATEST(sender_uuid, receiver_uuid))
		        `+messageColumns+`
		 FROM messages
		 WHERE room_uuid IS NULL
		   AND (sender_uuid = $1::uuid OR receiver_uuid = $1::uuid)
		 ORDER BY LEAST(sender_uuid, receiver_uuid), GREATEST(sender_uuid, receiver_uuid),
		          created_at DESC, id DESC`,
		userUUID)
}

// DeleteDirectMessages hard-deletes every message between two identities,
// both directions. Used by direct-conversation deletion after archival.
func (s *Store) DeleteDirectMessages(ctx context.Context, userA, userB string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM messages
		 WHERE room_uuid IS NULL
		   AND ((sender_uuid = $1::uuid AND receiver_uuid = $2::uuid)
		     OR (sender_uuid = $2::uuid AND receiver_uuid = $1::uuid))`,
		userA, userB)
	if err != nil {
		return fmt.Errorf("delete direct messages: %w", err)
	}
	return nil
}
