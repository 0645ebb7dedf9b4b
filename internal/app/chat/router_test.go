package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"teamchat/internal/app/store"
)

type fakePresence struct {
	conns map[string]Conn
}

func (p *fakePresence) LookupConnection(userUUID string) (Conn, bool) {
	conn, ok := p.conns[userUUID]
	return conn, ok
}

type fakeMembers struct {
	members map[string][]string
	err     error
}

func (m *fakeMembers) ListRoomMemberUUIDs(ctx context.Context, roomUUID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members[roomUUID], nil
}

const roomUUID = "3d86cf77-5af8-4f23-a7a4-08a3f207f1f2"

func directMessage(sender, receiver string) store.Message {
	return store.Message{
		ID:           1,
		SenderUUID:   sender,
		ReceiverUUID: receiver,
		Text:         "hello",
		CreatedAt:    time.Now(),
	}
}

func roomMessage(sender string) store.Message {
	return store.Message{
		ID:         2,
		SenderUUID: sender,
		RoomUUID:   roomUUID,
		Text:       "hello room",
		CreatedAt:  time.Now(),
	}
}

func TestRouteDirectDeliversToReceiverAndEchoesSender(t *testing.T) {
	senderConn := newFakeConn()
	receiverConn := newFakeConn()
	router := NewRouter(
		&fakePresence{conns: map[string]Conn{aliceUUID: senderConn, bobUUID: receiverConn}},
		&fakeMembers{},
		zerolog.Nop(),
	)

	if err := router.Route(context.Background(), directMessage(aliceUUID, bobUUID)); err != nil {
		t.Fatalf("route: %v", err)
	}

	if got := len(receiverConn.eventsOfType(EventChat)); got != 1 {
		t.Fatalf("receiver chat events = %d, want 1", got)
	}
	if got := len(receiverConn.eventsOfType(EventNewMessage)); got != 1 {
		t.Fatalf("receiver notifications = %d, want 1", got)
	}
	if got := len(senderConn.eventsOfType(EventChat)); got != 1 {
		t.Fatalf("sender echo events = %d, want 1", got)
	}
	if got := len(senderConn.eventsOfType(EventNewMessage)); got != 0 {
		t.Fatalf("sender must not get a notification for their own message, got %d", got)
	}
}

func TestRouteDirectOfflineReceiverStillEchoesSender(t *testing.T) {
	senderConn := newFakeConn()
	router := NewRouter(
		&fakePresence{conns: map[string]Conn{aliceUUID: senderConn}},
		&fakeMembers{},
		zerolog.Nop(),
	)

	if err := router.Route(context.Background(), directMessage(aliceUUID, bobUUID)); err != nil {
		t.Fatalf("route: %v", err)
	}
	if got := len(senderConn.eventsOfType(EventChat)); got != 1 {
		t.Fatalf("sender echo events = %d, want 1", got)
	}
}

func TestRouteDirectSelfMessageDeliversOnce(t *testing.T) {
	conn := newFakeConn()
	router := NewRouter(
		&fakePresence{conns: map[string]Conn{aliceUUID: conn}},
		&fakeMembers{},
		zerolog.Nop(),
	)

	if err := router.Route(context.Background(), directMessage(aliceUUID, aliceUUID)); err != nil {
		t.Fatalf("route: %v", err)
	}
	if got := len(conn.eventsOfType(EventChat)); got != 1 {
		t.Fatalf("self message chat events = %d, want exactly 1", got)
	}
}

func TestRouteRoomFansOutToOnlineMembersIncludingSender(t *testing.T) {
	senderConn := newFakeConn()
	memberConn := newFakeConn()
	router := NewRouter(
		&fakePresence{conns: map[string]Conn{aliceUUID: senderConn, bobUUID: memberConn}},
		&fakeMembers{members: map[string][]string{
			roomUUID: {aliceUUID, bobUUID, carolUUID},
		}},
		zerolog.Nop(),
	)

	if err := router.Route(context.Background(), roomMessage(aliceUUID)); err != nil {
		t.Fatalf("route: %v", err)
	}

	for name, conn := range map[string]*fakeConn{"sender": senderConn, "member": memberConn} {
		if got := len(conn.eventsOfType(EventChat)); got != 1 {
			t.Fatalf("%s chat events = %d, want 1", name, got)
		}
		if got := len(conn.eventsOfType(EventNewMessage)); got != 1 {
			t.Fatalf("%s notifications = %d, want 1", name, got)
		}
		if got := len(conn.eventsOfType(EventGroupMessage)); got != 1 {
			t.Fatalf("%s group notifications = %d, want 1", name, got)
		}
	}
}

func TestRouteRoomMembershipLookupFailure(t *testing.T) {
	router := NewRouter(
		&fakePresence{conns: map[string]Conn{}},
		&fakeMembers{err: errors.New("db down")},
		zerolog.Nop(),
	)

	if err := router.Route(context.Background(), roomMessage(aliceUUID)); err == nil {
		t.Fatal("expected an error when membership cannot be resolved")
	}
}
