/*
Package store is the PostgreSQL persistence layer.

It owns the durable rows behind the chat core: messages, rooms, room
membership and per-user read marks, plus the read-only user directory. All
queries run against a pgxpool.Pool; commit timestamps assigned here are the
authoritative conversation order.
*/
package store

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"teamchat/internal/pkg/logx"
)

// Message is a persisted chat message. Exactly one of ReceiverUUID and
// RoomUUID is set; the messages table enforces the same rule with a CHECK
// constraint.
type Message struct {
	ID           int64     `json:"message_id"`
	SenderUUID   string    `json:"sender_uuid"`
	ReceiverUUID string    `json:"receiver_uuid,omitempty"`
	RoomUUID     string    `json:"room_uuid,omitempty"`
	Text         string    `json:"text"`
	FileKey      string    `json:"file_key,omitempty"`
	FileName     string    `json:"file_name,omitempty"`
	FileType     string    `json:"file_type,omitempty"`
	CreatedAt    time.Time `json:"timestamp"`
}

// IsRoomMessage reports whether the message is addressed to a room.
func (m Message) IsRoomMessage() bool {
	return m.RoomUUID != ""
}

// Room is a persisted group conversation.
type Room struct {
	RoomUUID  string    `json:"room_uuid"`
	IsGroup   bool      `json:"is_group"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadMark is the per-user-per-room last-read boundary. Messages at or
// before LastReadAt count as seen.
type ReadMark struct {
	UserUUID   string
	RoomUUID   string
	LastReadAt time.Time
}

// Store executes all SQL for the chat core.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New returns a Store bound to the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: logx.Logger().With().Str("component", "Store").Logger(),
	}
}
