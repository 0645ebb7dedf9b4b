/*
Package chat contains the realtime core: the presence registry mapping online
identities to live connections, the per-connection pumps, and the router that
fans persisted messages out to live recipients.

This file defines the event envelope exchanged on the realtime channel and
the payload types for each event kind.
*/
package chat

import "encoding/json"

// EventType names one kind of realtime event.
type EventType string

const (
	// EventAuthenticate is sent by a client to bind its connection to an
	// identity. The token is verified against the identity service's secret.
	EventAuthenticate EventType = "authenticate"

	// EventChat carries a full message payload, inbound (send request) and
	// outbound (delivery for transcript rendering).
	EventChat EventType = "chat"

	// EventNewMessage is the lightweight notification emitted alongside
	// every delivery, carrying only the sender and conversation identifiers
	// so clients can update badges without parsing full payloads.
	EventNewMessage EventType = "new_message"

	// EventGroupMessage is the room-specific notification variant.
	EventGroupMessage EventType = "group_message"

	// EventUserList is the online-user snapshot broadcast after every
	// register and unregister.
	EventUserList EventType = "user_list"

	// EventError reports a rejected operation back to one client.
	EventError EventType = "error"
)

// Event is the envelope for everything crossing the realtime channel.
type Event struct {
	Type    EventType `json:"event"`
	Payload any       `json:"payload,omitempty"`
}

// InboundEvent is the wire form of a client-to-server event; the payload
// stays raw until the dispatch table picks a handler.
type InboundEvent struct {
	Type    EventType       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AuthenticatePayload carries the identity token for EventAuthenticate.
type AuthenticatePayload struct {
	Token string `json:"token"`
}

// ChatSendPayload is the inbound form of EventChat. Exactly one of
// ReceiverUUID and RoomUUID must be set; the sender comes from the
// authenticated session, never from the payload.
type ChatSendPayload struct {
	ReceiverUUID string `json:"receiver_uuid,omitempty"`
	RoomUUID     string `json:"room_uuid,omitempty"`
	Text         string `json:"text,omitempty"`
	FileKey      string `json:"file_key,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	FileType     string `json:"file_type,omitempty"`
}

// NotificationPayload is the EventNewMessage body.
type NotificationPayload struct {
	SenderUUID   string `json:"sender_uuid"`
	ReceiverUUID string `json:"receiver_uuid,omitempty"`
	RoomUUID     string `json:"room_uuid,omitempty"`
}

// GroupNotificationPayload is the EventGroupMessage body.
type GroupNotificationPayload struct {
	RoomUUID   string `json:"room_uuid"`
	SenderUUID string `json:"sender_uuid"`
}

// OnlineUser is one entry of the EventUserList snapshot.
type OnlineUser struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// ErrorPayload is the EventError body.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
