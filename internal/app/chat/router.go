package chat

import (
	"context"

	"github.com/rs/zerolog"

	"teamchat/internal/app/store"
)

// PresenceLookup is the slice of the registry the router needs.
type PresenceLookup interface {
	LookupConnection(userUUID string) (Conn, bool)
}

// MemberLister resolves a room to its current membership.
type MemberLister interface {
	ListRoomMemberUUIDs(ctx context.Context, roomUUID string) ([]string, error)
}

// Router fans a persisted message out to the live connections that should
// see it. Delivery is best effort: offline recipients are skipped and catch
// up through history and unread counts.
type Router struct {
	presence PresenceLookup
	members  MemberLister
	logger   zerolog.Logger
}

func NewRouter(presence PresenceLookup, members MemberLister, logger zerolog.Logger) *Router {
	return &Router{
		presence: presence,
		members:  members,
		logger:   logger.With().Str("component", "router").Logger(),
	}
}

// Route delivers a persisted message. Direct messages go to the receiver and
// echo back to the sender; room messages go to every current member, sender
// included. Every delivery pairs the full payload with a lightweight
// notification, and room deliveries add the room-specific variant.
func (r *Router) Route(ctx context.Context, msg store.Message) error {
	if msg.IsRoomMessage() {
		return r.routeRoom(ctx, msg)
	}
	r.routeDirect(msg)
	return nil
}

func (r *Router) routeDirect(msg store.Message) {
	notification := NotificationPayload{
		SenderUUID:   msg.SenderUUID,
		ReceiverUUID: msg.ReceiverUUID,
	}

	if conn, ok := r.presence.LookupConnection(msg.ReceiverUUID); ok {
		r.deliver(conn, Event{Type: EventChat, Payload: msg})
		r.deliver(conn, Event{Type: EventNewMessage, Payload: notification})
	}

	// Echo to the sender unless both ends share the one connection.
	if msg.SenderUUID == msg.ReceiverUUID {
		return
	}
	if conn, ok := r.presence.LookupConnection(msg.SenderUUID); ok {
		r.deliver(conn, Event{Type: EventChat, Payload: msg})
	}
}

func (r *Router) routeRoom(ctx context.Context, msg store.Message) error {
	memberUUIDs, err := r.members.ListRoomMemberUUIDs(ctx, msg.RoomUUID)
	if err != nil {
		r.logger.Error().Err(err).Str("room_uuid", msg.RoomUUID).Msg("resolve room members")
		return err
	}

	notification := NotificationPayload{
		SenderUUID: msg.SenderUUID,
		RoomUUID:   msg.RoomUUID,
	}
	groupNotification := GroupNotificationPayload{
		RoomUUID:   msg.RoomUUID,
		SenderUUID: msg.SenderUUID,
	}

	for _, memberUUID := range memberUUIDs {
		conn, ok := r.presence.LookupConnection(memberUUID)
		if !ok {
			continue
		}
		r.deliver(conn, Event{Type: EventChat, Payload: msg})
		r.deliver(conn, Event{Type: EventNewMessage, Payload: notification})
		r.deliver(conn, Event{Type: EventGroupMessage, Payload: groupNotification})
	}
	return nil
}

func (r *Router) deliver(conn Conn, event Event) {
	if err := conn.Send(event); err != nil {
		r.logger.Warn().Err(err).Str("event", string(event.Type)).Msg("deliver event")
	}
}
