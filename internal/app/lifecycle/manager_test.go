package lifecycle

import (
	"context"
	"errors"
	"io"
	"strings"
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
)

type fakeManagerStore struct {
	users   map[string]user.User
	rooms   map[string]store.Room
	members map[string][]string

	roomMessages   map[string][]store.Message
	directMessages []store.Message

	createdMembers []string
	purged         []string
	directDeleted  bool
}

func newFakeManagerStore() *fakeManagerStore {
	return &fakeManagerStore{
		users: map[string]user.User{
			aliceUUID: {UUID: aliceUUID, Name: "Alice"},
			bobUUID:   {UUID: bobUUID, Name: "Bob"},
			carolUUID: {UUID: carolUUID, Name: "Carol"},
		},
		rooms: map[string]store.Room{
			generalRoom: {RoomUUID: generalRoom, IsGroup: true, Name: "general"},
		},
		members:      map[string][]string{generalRoom: {aliceUUID, bobUUID}},
		roomMessages: map[string][]store.Message{},
	}
}

func (s *fakeManagerStore) CreateRoom(ctx context.Context, room store.Room, memberUUIDs []string) error {
	room.CreatedAt = time.Now()
	s.rooms[room.RoomUUID] = room
	s.members[room.RoomUUID] = memberUUIDs
	s.createdMembers = memberUUIDs
	return nil
}

func (s *fakeManagerStore) GetRoom(ctx context.Context, roomUUID string) (store.Room, error) {
	r, ok := s.rooms[roomUUID]
	if !ok {
		return store.Room{}, pgx.ErrNoRows
	}
	return r, nil
}

func (s *fakeManagerStore) IsRoomMember(ctx context.Context, roomUUID, userUUID string) (bool, error) {
	for _, m := range s.members[roomUUID] {
		if m == userUUID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeManagerStore) ListRoomMessages(ctx context.Context, roomUUID string) ([]store.Message, error) {
	return s.roomMessages[roomUUID], nil
}

func (s *fakeManagerStore) PurgeRoom(ctx context.Context, roomUUID string) error {
	s.purged = append(s.purged, roomUUID)
	delete(s.rooms, roomUUID)
	delete(s.members, roomUUID)
	delete(s.roomMessages, roomUUID)
	return nil
}

func (s *fakeManagerStore) GetUserByUUID(ctx context.Context, userUUID string) (user.User, error) {
	u, ok := s.users[userUUID]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *fakeManagerStore) ListUsersByUUIDs(ctx context.Context, userUUIDs []string) ([]user.User, error) {
	var out []user.User
	for _, id := range userUUIDs {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeManagerStore) ListDirectMessages(ctx context.Context, userA, userB string) ([]store.Message, error) {
	return s.directMessages, nil
}

func (s *fakeManagerStore) DeleteDirectMessages(ctx context.Context, userA, userB string) error {
	s.directDeleted = true
	s.directMessages = nil
	return nil
}

type fakeSink struct {
	objects map[string]string
	err     error
}

func newFakeSink() *fakeSink {
	return &fakeSink{objects: map[string]string{}}
}

func (s *fakeSink) Put(ctx context.Context, key string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = string(data)
	return "fake://" + key, nil
}

func (s *fakeSink) onlyObject(t *testing.T) string {
	t.Helper()
	if len(s.objects) != 1 {
		t.Fatalf("archived objects = %d, want 1", len(s.objects))
	}
	for _, body := range s.objects {
		return body
	}
	return ""
}

func newTestManager(managerStore *fakeManagerStore, sink *fakeSink) *Manager {
	return NewManager(managerStore, sink, "transcripts", zerolog.Nop())
}

func TestCreateRoomMembership(t *testing.T) {
	tests := []struct {
		name     string
		members  []string
		wantCode int
	}{
		{name: "creator alone", members: nil, wantCode: errs.ErrRoomMembersTooFew},
		{name: "creator duplicated", members: []string{aliceUUID, aliceUUID}, wantCode: errs.ErrRoomMembersTooFew},
		{name: "unknown member", members: []string{"11111111-2222-4333-8444-555555555555"}, wantCode: errs.ErrUserNotFound},
		{name: "member id is not an identifier", members: []string{"bob"}, wantCode: errs.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := newTestManager(newFakeManagerStore(), newFakeSink())

			_, customErr := manager.CreateRoom(context.Background(), aliceUUID, "new room", tt.members)
			if customErr == nil || customErr.Code != tt.wantCode {
				t.Fatalf("code = %v, want %d", customErr, tt.wantCode)
			}
		})
	}
}

func TestCreateRoomIncludesCreator(t *testing.T) {
	managerStore := newFakeManagerStore()
	manager := newTestManager(managerStore, newFakeSink())

	room, customErr := manager.CreateRoom(context.Background(), aliceUUID, "design", []string{bobUUID, carolUUID})
	if customErr != nil {
		t.Fatalf("create room: %v", customErr)
	}
	if !room.IsGroup || room.RoomUUID == "" {
		t.Fatalf("created room = %+v", room)
	}

	if len(managerStore.createdMembers) != 3 || managerStore.createdMembers[0] != aliceUUID {
		t.Fatalf("members = %v, want creator first plus two others", managerStore.createdMembers)
	}
}

func TestDeleteRoomRejections(t *testing.T) {
	manager := newTestManager(newFakeManagerStore(), newFakeSink())

	if _, customErr := manager.DeleteRoom(context.Background(), aliceUUID, "11111111-2222-4333-8444-555555555555"); customErr == nil || customErr.Code != errs.ErrRoomNotFound {
		t.Fatalf("expected room not found, got %v", customErr)
	}
	if _, customErr := manager.DeleteRoom(context.Background(), carolUUID, generalRoom); customErr == nil || customErr.Code != errs.ErrNotRoomMember {
		t.Fatalf("expected membership rejection, got %v", customErr)
	}
}

func TestDeleteRoomArchiveFailureKeepsRows(t *testing.T) {
	managerStore := newFakeManagerStore()
	managerStore.roomMessages[generalRoom] = []store.Message{
		{ID: 1, SenderUUID: bobUUID, RoomUUID: generalRoom, Text: "keep me", CreatedAt: time.Now()},
	}
	sink := newFakeSink()
	sink.err = errors.New("bucket unavailable")
	manager := newTestManager(managerStore, sink)

	_, customErr := manager.DeleteRoom(context.Background(), aliceUUID, generalRoom)
	if customErr == nil || customErr.Code != errs.ErrArchiveFailed {
		t.Fatalf("expected archive failure, got %v", customErr)
	}
	if len(managerStore.purged) != 0 {
		t.Fatal("archive failure must abort the purge")
	}
	if _, err := managerStore.GetRoom(context.Background(), generalRoom); err != nil {
		t.Fatal("room rows must survive a failed archive")
	}
}

func TestDeleteRoomArchivesThenPurges(t *testing.T) {
	managerStore := newFakeManagerStore()
	base := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	managerStore.roomMessages[generalRoom] = []store.Message{
		{ID: 1, SenderUUID: bobUUID, RoomUUID: generalRoom, Text: "first", CreatedAt: base},
		{ID: 2, SenderUUID: aliceUUID, RoomUUID: generalRoom, Text: "second", CreatedAt: base.Add(time.Minute)},
	}
	sink := newFakeSink()
	manager := newTestManager(managerStore, sink)

	location, customErr := manager.DeleteRoom(context.Background(), aliceUUID, generalRoom)
	if customErr != nil {
		t.Fatalf("delete room: %v", customErr)
	}
	if !strings.HasPrefix(location, "fake://transcripts/room_") {
		t.Fatalf("archive location = %q", location)
	}

	// Group transcripts label lines with the raw sender identity, never the
	// display name.
	transcript := sink.onlyObject(t)
	want := "[2026-03-01 09:30:00] " + bobUUID + ": first\n" +
		"[2026-03-01 09:31:00] " + aliceUUID + ": second\n"
	if transcript != want {
		t.Fatalf("transcript = %q, want %q", transcript, want)
	}

	if len(managerStore.purged) != 1 || managerStore.purged[0] != generalRoom {
		t.Fatalf("purged = %v, want [%s]", managerStore.purged, generalRoom)
	}
}

func TestDeleteDirectConversation(t *testing.T) {
	managerStore := newFakeManagerStore()
	base := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	managerStore.directMessages = []store.Message{
		{ID: 1, SenderUUID: aliceUUID, ReceiverUUID: bobUUID, Text: "hi bob", CreatedAt: base},
	}
	sink := newFakeSink()
	manager := newTestManager(managerStore, sink)

	if _, customErr := manager.DeleteDirectConversation(context.Background(), aliceUUID, bobUUID); customErr != nil {
		t.Fatalf("delete conversation: %v", customErr)
	}
	if !managerStore.directDeleted {
		t.Fatal("direct messages must be removed after archival")
	}
	if got := sink.onlyObject(t); got != "[2026-03-02 15:00:00] Alice: hi bob\n" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestFormatTranscriptLine(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	names := map[string]string{aliceUUID: "Alice"}

	tests := []struct {
		name string
		msg  store.Message
		want string
	}{
		{
			name: "known sender with text",
			msg:  store.Message{SenderUUID: aliceUUID, Text: "hello", CreatedAt: at},
			want: "[2026-03-01 09:30:00] Alice: hello",
		},
		{
			name: "unknown sender falls back to identifier",
			msg:  store.Message{SenderUUID: bobUUID, Text: "hey", CreatedAt: at},
			want: "[2026-03-01 09:30:00] " + bobUUID + ": hey",
		},
		{
			name: "file only message renders the file name",
			msg:  store.Message{SenderUUID: aliceUUID, FileName: "plan.pdf", CreatedAt: at},
			want: "[2026-03-01 09:30:00] Alice: [file] plan.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTranscriptLine(tt.msg, names); got != tt.want {
				t.Fatalf("line = %q, want %q", got, tt.want)
			}
		})
	}
}
