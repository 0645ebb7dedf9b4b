package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	jwtpkg "teamchat/internal/pkg/auth/jwt"
	"teamchat/internal/pkg/errs"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxInboundBytes = 16 * 1024

	// CloseSessionReplaced signals that a newer connection took over the
	// identity.
	CloseSessionReplaced = 4001

	sendBufferSize = 256
	sendTimeout    = 10 * time.Second
)

var errSendBufferFull = errors.New("chat: send buffer full")

// inboundHandlers is the dispatch table for client-to-server events.
// Unknown event types are dropped with a log line.
var inboundHandlers = map[EventType]func(*Client, json.RawMessage){
	EventAuthenticate: (*Client).handleAuthenticate,
	EventChat:         (*Client).handleChat,
}

// Client is one websocket connection. It stays anonymous until a successful
// authenticate event binds it to an identity in the registry.
type Client struct {
	conn     *websocket.Conn
	registry *Registry
	svc      *Service
	secret   string
	logger   zerolog.Logger

	userUUID string

	send      chan []byte
	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, registry *Registry, svc *Service, secret string, logger zerolog.Logger) *Client {
	return &Client{
		conn:     conn,
		registry: registry,
		svc:      svc,
		secret:   secret,
		logger:   logger.With().Str("component", "ws_client").Logger(),
		send:     make(chan []byte, sendBufferSize),
	}
}

// Send queues one event for the write pump. It never blocks: when the buffer
// is full the event is dropped and the client catches up through history.
func (c *Client) Send(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("chat: connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// Kick closes the connection with a session-replaced close frame. The read
// pump observes the closed socket and runs the usual cleanup.
func (c *Client) Kick(reason string) {
	c.closeOnce.Do(func() {
		c.sendError(errs.NewError(errs.ErrSessionReplaced))

		msg := websocket.FormatCloseMessage(CloseSessionReplaced, reason)
		deadline := time.Now().Add(writeWait)
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			c.logger.Warn().Err(err).Msg("write session-replaced close frame")
		}
		c.conn.Close()
	})
}

// ReadPump reads inbound events until the connection dies, dispatching each
// through the handler table. It owns registry cleanup for the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Unregister(c)
		c.closeSend()
		c.closeOnce.Do(func() { c.conn.Close() })
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		var event InboundEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.logger.Warn().Err(err).Msg("malformed inbound event")
			continue
		}

		handler, ok := inboundHandlers[event.Type]
		if !ok {
			c.logger.Warn().Str("event", string(event.Type)).Msg("unknown inbound event")
			continue
		}
		handler(c, event.Payload)
	}
}

// WritePump drains the send queue to the socket and keeps the connection
// alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeOnce.Do(func() { c.conn.Close() })
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// handleAuthenticate verifies the identity token and registers the
// connection. Failure is deliberately silent on the wire: the connection
// simply stays anonymous.
func (c *Client) handleAuthenticate(raw json.RawMessage) {
	var payload AuthenticatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("malformed authenticate payload")
		return
	}

	claims, err := jwtpkg.ParseToken(payload.Token, c.secret)
	if err != nil {
		c.logger.Warn().Err(err).Msg("rejected identity token")
		return
	}

	c.userUUID = claims.UserUUID
	c.registry.Register(c, claims.UserUUID)
}

func (c *Client) handleChat(raw json.RawMessage) {
	if c.userUUID == "" {
		c.sendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	var payload ChatSendPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.sendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	_, sendErr := c.svc.Send(ctx, c.userUUID, SendInput{
		ReceiverUUID: payload.ReceiverUUID,
		RoomUUID:     payload.RoomUUID,
		Text:         payload.Text,
		FileKey:      payload.FileKey,
		FileName:     payload.FileName,
		FileType:     payload.FileType,
	})
	if sendErr != nil {
		c.sendError(sendErr)
	}
}

func (c *Client) sendError(customErr *errs.CustomError) {
	event := Event{Type: EventError, Payload: ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	}}
	if err := c.Send(event); err != nil {
		c.logger.Warn().Err(err).Msg("send error event")
	}
}
