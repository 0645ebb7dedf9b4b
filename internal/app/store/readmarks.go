package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// UpsertReadMark records that the user has seen the room up to the given
// time. One row per (user, room); a later call overwrites the timestamp.
func (s *Store) UpsertReadMark(ctx context.Context, userUUID, roomUUID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO room_read_marks (user_uuid, room_uuid, last_read_at)
		 VALUES ($1::uuid, $2::uuid, $3)
		 ON CONFLICT (user_uuid, room_uuid) DO UPDATE SET last_read_at = EXCLUDED.last_read_at`,
		userUUID, roomUUID, at)
	if err != nil {
		return fmt.Errorf("upsert read mark: %w", err)
	}
	return nil
}

// GetReadMark returns the user's last-read boundary for a room, or
// found=false when the user has never marked the room read.
func (s *Store) GetReadMark(ctx context.Context, userUUID, roomUUID string) (time.Time, bool, error) {
	var lastReadAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT last_read_at FROM room_read_marks
		 WHERE user_uuid = $1::uuid AND room_uuid = $2::uuid`,
		userUUID, roomUUID).Scan(&lastReadAt)

	if err == pgx.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get read mark: %w", err)
	}
	return lastReadAt, true, nil
}

// CountUnread counts the room messages the user has not seen: messages from
// other senders newer than the read mark, or all foreign messages when no
// mark exists yet.
func (s *Store) CountUnread(ctx context.Context, userUUID, roomUUID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages m
		 WHERE m.room_uuid = $2::uuid
		   AND m.sender_uuid <> $1::uuid
		   AND m.created_at > COALESCE(
		       (SELECT last_read_at FROM room_read_marks
		        WHERE user_uuid = $1::uuid AND room_uuid = $2::uuid),
		       '-infinity'::timestamptz)`,
		userUUID, roomUUID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
