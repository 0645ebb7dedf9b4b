package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"teamchat/internal/app/user"
)

const broadcastTimeout = 5 * time.Second

// Conn is one live delivery target. *Client implements it; tests substitute
// in-memory fakes.
type Conn interface {
	// Send queues one event for delivery. A failed send never blocks the
	// caller; slow consumers are disconnected by their own write pump.
	Send(event Event) error

	// Kick closes the connection with a session-replaced signal.
	Kick(reason string)
}

// Directory resolves identities to directory rows for the online snapshot.
type Directory interface {
	ListUsersByUUIDs(ctx context.Context, userUUIDs []string) ([]user.User, error)
}

// Registry is the authoritative map between identities and live connections.
// Each identity holds at most one connection; the most recent registration
// wins and the replaced connection is kicked.
type Registry struct {
	mu     sync.RWMutex
	byConn map[Conn]string
	byUser map[string]Conn

	directory Directory
	logger    zerolog.Logger
}

func NewRegistry(directory Directory, logger zerolog.Logger) *Registry {
	return &Registry{
		byConn:    make(map[Conn]string),
		byUser:    make(map[string]Conn),
		directory: directory,
		logger:    logger.With().Str("component", "presence").Logger(),
	}
}

// Register binds a connection to an identity. If the identity already has a
// live connection, the old one is kicked before the new one takes its place.
// A fresh online snapshot is broadcast afterwards.
func (r *Registry) Register(conn Conn, userUUID string) {
	r.mu.Lock()
	if old, ok := r.byUser[userUUID]; ok && old != conn {
		delete(r.byConn, old)
		go old.Kick("session replaced by a newer connection")
	}
	// A connection re-authenticating as someone else releases its old identity.
	if prev, ok := r.byConn[conn]; ok && prev != userUUID && r.byUser[prev] == conn {
		delete(r.byUser, prev)
	}
	r.byConn[conn] = userUUID
	r.byUser[userUUID] = conn
	r.mu.Unlock()

	r.logger.Info().Str("user_uuid", userUUID).Msg("registered connection")
	go r.BroadcastUserList(context.Background())
}

// Unregister removes a connection. If the identity has since registered a
// newer connection, that binding is left untouched.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	userUUID, ok := r.byConn[conn]
	if ok {
		delete(r.byConn, conn)
		if r.byUser[userUUID] == conn {
			delete(r.byUser, userUUID)
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.logger.Info().Str("user_uuid", userUUID).Msg("unregistered connection")
	go r.BroadcastUserList(context.Background())
}

// LookupConnection returns the live connection for an identity, if any.
func (r *Registry) LookupConnection(userUUID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[userUUID]
	return conn, ok
}

// ListOnlineIdentities returns a snapshot of the identities currently bound
// to a connection.
func (r *Registry) ListOnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]string, 0, len(r.byUser))
	for userUUID := range r.byUser {
		identities = append(identities, userUUID)
	}
	return identities
}

// BroadcastUserList resolves the current online set against the directory and
// sends the snapshot to every live connection. Failures degrade to a log
// line; presence churn must never take a connection down.
func (r *Registry) BroadcastUserList(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, broadcastTimeout)
	defer cancel()

	r.mu.RLock()
	identities := make([]string, 0, len(r.byUser))
	for userUUID := range r.byUser {
		identities = append(identities, userUUID)
	}
	conns := make([]Conn, 0, len(r.byConn))
	for conn := range r.byConn {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	users, err := r.directory.ListUsersByUUIDs(ctx, identities)
	if err != nil {
		r.logger.Error().Err(err).Msg("resolve online users for broadcast")
		return
	}

	snapshot := make([]OnlineUser, 0, len(users))
	for _, u := range users {
		snapshot = append(snapshot, OnlineUser{
			UUID:       u.UUID,
			Name:       u.Name,
			Department: u.Department,
		})
	}

	event := Event{Type: EventUserList, Payload: snapshot}
	for _, conn := range conns {
		if err := conn.Send(event); err != nil {
			r.logger.Warn().Err(err).Msg("send user list snapshot")
		}
	}
}
