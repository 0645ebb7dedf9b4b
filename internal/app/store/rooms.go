package store

import (
	"context"
	"fmt"
)

// CreateRoom persists the room row and one membership row per member in a
// single transaction. Either everything commits or nothing does.
func (s *Store) CreateRoom(ctx context.Context, room Room, memberUUIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create room: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO chat_rooms (room_uuid, is_group, name) VALUES ($1::uuid, $2, $3)`,
		room.RoomUUID, room.IsGroup, nullableText(room.Name))
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}

	for _, memberUUID := range memberUUIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO chat_room_members (room_uuid, user_uuid) VALUES ($1::uuid, $2::uuid)
			 ON CONFLICT (room_uuid, user_uuid) DO NOTHING`,
			room.RoomUUID, memberUUID)
		if err != nil {
			return fmt.Errorf("insert member %s: %w", memberUUID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetRoom fetches one room row. Returns pgx.ErrNoRows when absent.
func (s *Store) GetRoom(ctx context.Context, roomUUID string) (Room, error) {
	var r Room
	var name string

	row := s.pool.QueryRow(ctx,
		`SELECT room_uuid::text, is_group, COALESCE(name, ''), created_at
		 FROM chat_rooms WHERE room_uuid = $1::uuid`,
		roomUUID)

	if err := row.Scan(&r.RoomUUID, &r.IsGroup, &name, &r.CreatedAt); err != nil {
		return Room{}, err
	}
	r.Name = name
	return r, nil
}

// ListGroupRoomsForUser returns every group room the user is a member of.
func (s *Store) ListGroupRoomsForUser(ctx context.Context, userUUID string) ([]Room, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.room_uuid::text, r.is_group, COALESCE(r.name, ''), r.created_at
		 FROM chat_rooms r
		 JOIN chat_room_members m ON m.room_uuid = r.room_uuid
		 WHERE m.user_uuid = $1::uuid AND r.is_group
		 ORDER BY r.created_at`,
		userUUID)
	if err != nil {
		return nil, fmt.Errorf("list group rooms: %w", err)
	}
	defer rows.Close()

	roomsOut := make([]Room, 0)
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.RoomUUID, &r.IsGroup, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		roomsOut = append(roomsOut, r)
	}
	return roomsOut, rows.Err()
}

// ListRoomMemberUUIDs returns the identities currently holding a membership
// row for the room.
func (s *Store) ListRoomMemberUUIDs(ctx context.Context, roomUUID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_uuid::text FROM chat_room_members WHERE room_uuid = $1::uuid`,
		roomUUID)
	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	defer rows.Close()

	members := make([]string, 0)
	for rows.Next() {
		var memberUUID string
		if err := rows.Scan(&memberUUID); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		members = append(members, memberUUID)
	}
	return members, rows.Err()
}

// IsRoomMember reports whether the identity holds a membership row.
func (s *Store) IsRoomMember(ctx context.Context, roomUUID, userUUID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM chat_room_members
		    WHERE room_uuid = $1::uuid AND user_uuid = $2::uuid)`,
		roomUUID, userUUID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// PurgeRoom removes every durable trace of a room in one transaction:
// messages first, then memberships, read marks, and finally the room row.
// Callers must have archived the transcript before this runs.
func (s *Store) PurgeRoom(ctx context.Context, roomUUID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purge room: %w", err)
	}
	defer tx.Rollback(ctx)

	steps := []string{
		`DELETE FROM messages WHERE room_uuid = $1::uuid`,
		`DELETE FROM chat_room_members WHERE room_uuid = $1::uuid`,
		`DELETE FROM room_read_marks WHERE room_uuid = $1::uuid`,
		`DELETE FROM chat_rooms WHERE room_uuid = $1::uuid`,
	}

	for _, step := range steps {
		if _, err := tx.Exec(ctx, step, roomUUID); err != nil {
			return fmt.Errorf("purge room %s: %w", roomUUID, err)
		}
	}

	return tx.Commit(ctx)
}
