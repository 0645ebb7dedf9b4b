package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"teamchat/internal/app/store"
	"teamchat/internal/app/user"
	"teamchat/internal/pkg/errs"
)

const (
	aliceUUID = "0b9318cf-31a1-4526-8018-2a5827cd0835"
	bobUUID   = "9a1f2c3d-4e5b-4a77-9c88-001122334455"
	carolUUID = "5b7f0d2e-8c3a-4f16-b2d9-aabbccddeeff"

	generalRoom = "3d86cf77-5af8-4f23-a7a4-08a3f207f1f2"
	emptyRoom   = "7c4f11a0-9b2d-4e6f-8a31-66778899aabb"
)

type readMarkCall struct {
	userUUID string
	roomUUID string
	at       time.Time
}

type fakeTrackerStore struct {
	users   map[string]user.User
	rooms   map[string]store.Room
	members map[string][]string

	roomMessages map[string][]store.Message
	directPairs  map[string][]store.Message
	latestDirect []store.Message
	unread       map[string]int

	upserts []readMarkCall
}

func newFakeTrackerStore() *fakeTrackerStore {
	return &fakeTrackerStore{
		users: map[string]user.User{
			aliceUUID: {UUID: aliceUUID, Name: "Alice"},
			bobUUID:   {UUID: bobUUID, Name: "Bob"},
			carolUUID: {UUID: carolUUID, Name: "Carol"},
		},
		rooms: map[string]store.Room{
			generalRoom: {RoomUUID: generalRoom, IsGroup: true, Name: "general"},
			emptyRoom:   {RoomUUID: emptyRoom, IsGroup: true, Name: "quiet"},
		},
		members: map[string][]string{
			generalRoom: {aliceUUID, bobUUID},
			emptyRoom:   {aliceUUID, bobUUID},
		},
		roomMessages: map[string][]store.Message{},
		directPairs:  map[string][]store.Message{},
		unread:       map[string]int{},
	}
}

func (s *fakeTrackerStore) GetRoom(ctx context.Context, roomUUID string) (store.Room, error) {
	r, ok := s.rooms[roomUUID]
	if !ok {
		return store.Room{}, pgx.ErrNoRows
	}
	return r, nil
}

func (s *fakeTrackerStore) IsRoomMember(ctx context.Context, roomUUID, userUUID string) (bool, error) {
	for _, m := range s.members[roomUUID] {
		if m == userUUID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeTrackerStore) ListGroupRoomsForUser(ctx context.Context, userUUID string) ([]store.Room, error) {
	var rooms []store.Room
	for roomUUID, members := range s.members {
		for _, m := range members {
			if m == userUUID {
				rooms = append(rooms, s.rooms[roomUUID])
			}
		}
	}
	return rooms, nil
}

func (s *fakeTrackerStore) ListRoomMemberUUIDs(ctx context.Context, roomUUID string) ([]string, error) {
	return s.members[roomUUID], nil
}

func (s *fakeTrackerStore) LastRoomMessage(ctx context.Context, roomUUID string) (store.Message, bool, error) {
	msgs := s.roomMessages[roomUUID]
	if len(msgs) == 0 {
		return store.Message{}, false, nil
	}
	return msgs[len(msgs)-1], true, nil
}

func (s *fakeTrackerStore) CountUnread(ctx context.Context, userUUID, roomUUID string) (int, error) {
	return s.unread[userUUID+"/"+roomUUID], nil
}

func (s *fakeTrackerStore) UpsertReadMark(ctx context.Context, userUUID, roomUUID string, at time.Time) error {
	s.upserts = append(s.upserts, readMarkCall{userUUID: userUUID, roomUUID: roomUUID, at: at})
	return nil
}

func (s *fakeTrackerStore) ListRoomMessages(ctx context.Context, roomUUID string) ([]store.Message, error) {
	return s.roomMessages[roomUUID], nil
}

func (s *fakeTrackerStore) ListDirectMessages(ctx context.Context, userA, userB string) ([]store.Message, error) {
	return s.directPairs[userA+"/"+userB], nil
}

func (s *fakeTrackerStore) ListLatestDirectMessages(ctx context.Context, userUUID string) ([]store.Message, error) {
	return s.latestDirect, nil
}

func (s *fakeTrackerStore) GetUserByUUID(ctx context.Context, userUUID string) (user.User, error) {
	u, ok := s.users[userUUID]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *fakeTrackerStore) ListUsersByUUIDs(ctx context.Context, userUUIDs []string) ([]user.User, error) {
	var out []user.User
	for _, id := range userUUIDs {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func roomMsg(id int64, sender string, at time.Time) store.Message {
	return store.Message{ID: id, SenderUUID: sender, RoomUUID: generalRoom, Text: "m", CreatedAt: at}
}

func TestMarkReadRequiresMembership(t *testing.T) {
	trackerStore := newFakeTrackerStore()
	tracker := NewTracker(trackerStore, zerolog.Nop())
	now := time.Now()

	if customErr := tracker.MarkRead(context.Background(), carolUUID, generalRoom, now); customErr == nil || customErr.Code != errs.ErrNotRoomMember {
		t.Fatalf("expected membership rejection, got %v", customErr)
	}
	if customErr := tracker.MarkRead(context.Background(), aliceUUID, "11111111-2222-4333-8444-555555555555", now); customErr == nil || customErr.Code != errs.ErrRoomNotFound {
		t.Fatalf("expected room not found, got %v", customErr)
	}
	if len(trackerStore.upserts) != 0 {
		t.Fatal("rejected mark must not touch the store")
	}

	if customErr := tracker.MarkRead(context.Background(), aliceUUID, generalRoom, now); customErr != nil {
		t.Fatalf("mark read: %v", customErr)
	}
	if len(trackerStore.upserts) != 1 || !trackerStore.upserts[0].at.Equal(now) {
		t.Fatalf("upserts = %+v, want one call at %v", trackerStore.upserts, now)
	}
}

func TestRoomHistoryMarksRoomRead(t *testing.T) {
	trackerStore := newFakeTrackerStore()
	base := time.Now().Add(-time.Hour)
	trackerStore.roomMessages[generalRoom] = []store.Message{
		roomMsg(1, bobUUID, base),
		roomMsg(2, aliceUUID, base.Add(time.Minute)),
	}
	tracker := NewTracker(trackerStore, zerolog.Nop())

	messages, customErr := tracker.RoomHistory(context.Background(), aliceUUID, generalRoom)
	if customErr != nil {
		t.Fatalf("room history: %v", customErr)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if len(trackerStore.upserts) != 1 {
		t.Fatal("entering a room must record an implicit read mark")
	}
	if trackerStore.upserts[0].roomUUID != generalRoom || trackerStore.upserts[0].userUUID != aliceUUID {
		t.Fatalf("implicit mark recorded for %+v", trackerStore.upserts[0])
	}

	if _, customErr := tracker.RoomHistory(context.Background(), carolUUID, generalRoom); customErr == nil || customErr.Code != errs.ErrNotRoomMember {
		t.Fatalf("expected membership rejection, got %v", customErr)
	}
}

func TestDirectHistoryUnknownPartner(t *testing.T) {
	tracker := NewTracker(newFakeTrackerStore(), zerolog.Nop())

	_, customErr := tracker.DirectHistory(context.Background(), aliceUUID, "11111111-2222-4333-8444-555555555555")
	if customErr == nil || customErr.Code != errs.ErrUserNotFound {
		t.Fatalf("expected user not found, got %v", customErr)
	}
}

func TestListInboxMergesAndSorts(t *testing.T) {
	trackerStore := newFakeTrackerStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// generalRoom has traffic, emptyRoom has none and must be skipped.
	trackerStore.roomMessages[generalRoom] = []store.Message{
		roomMsg(1, bobUUID, base.Add(10*time.Minute)),
	}
	trackerStore.unread[aliceUUID+"/"+generalRoom] = 3

	// One direct conversation with carol, newer than the room traffic.
	trackerStore.latestDirect = []store.Message{
		{ID: 9, SenderUUID: carolUUID, ReceiverUUID: aliceUUID, Text: "hey", CreatedAt: base.Add(30 * time.Minute)},
	}

	tracker := NewTracker(trackerStore, zerolog.Nop())
	entries, customErr := tracker.ListInbox(context.Background(), aliceUUID)
	if customErr != nil {
		t.Fatalf("list inbox: %v", customErr)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (empty room skipped)", len(entries))
	}

	if entries[0].Kind != KindDirect || entries[0].PartnerUUID != carolUUID {
		t.Fatalf("newest entry = %+v, want the direct conversation with carol", entries[0])
	}
	if entries[0].PartnerName != "Carol" {
		t.Fatalf("partner name = %q, want Carol", entries[0].PartnerName)
	}

	if entries[1].Kind != KindRoom || entries[1].RoomUUID != generalRoom {
		t.Fatalf("second entry = %+v, want the general room", entries[1])
	}
	if entries[1].Unread != 3 {
		t.Fatalf("room unread = %d, want 3", entries[1].Unread)
	}
}

func TestListInboxComposesNamelessRoomName(t *testing.T) {
	trackerStore := newFakeTrackerStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	namelessRoom := "8e2d44b1-0c5f-4a9e-93d2-112233445566"
	trackerStore.rooms[namelessRoom] = store.Room{RoomUUID: namelessRoom, IsGroup: true}
	trackerStore.members[namelessRoom] = []string{aliceUUID, bobUUID, carolUUID}
	trackerStore.roomMessages[namelessRoom] = []store.Message{
		{ID: 1, SenderUUID: bobUUID, RoomUUID: namelessRoom, Text: "hi", CreatedAt: base},
	}

	tracker := NewTracker(trackerStore, zerolog.Nop())
	entries, customErr := tracker.ListInbox(context.Background(), aliceUUID)
	if customErr != nil {
		t.Fatalf("list inbox: %v", customErr)
	}

	var entry *Entry
	for i := range entries {
		if entries[i].RoomUUID == namelessRoom {
			entry = &entries[i]
		}
	}
	if entry == nil {
		t.Fatal("nameless room missing from the inbox")
	}
	// The viewer never appears in their own composed room name.
	if entry.RoomName != "Bob, Carol" {
		t.Fatalf("room name = %q, want %q", entry.RoomName, "Bob, Carol")
	}
}

func TestComposeRoomName(t *testing.T) {
	members := []user.User{
		{UUID: aliceUUID, Name: "Alice"},
		{UUID: bobUUID, Name: "Bob"},
		{UUID: carolUUID, Name: "Carol"},
	}

	if got := ComposeRoomName(members, aliceUUID); got != "Bob, Carol" {
		t.Fatalf("composed name = %q, want %q", got, "Bob, Carol")
	}
	if got := ComposeRoomName(members, carolUUID); got != "Alice, Bob" {
		t.Fatalf("composed name = %q, want %q", got, "Alice, Bob")
	}
}
