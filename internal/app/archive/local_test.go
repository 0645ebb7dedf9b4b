package archive

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestLocalSinkPut(t *testing.T) {
	sink := NewLocalSink(t.TempDir())

	location, err := sink.Put(context.Background(), "transcripts/room_x_20260301T000000Z.txt", strings.NewReader("line\n"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "line\n" {
		t.Fatalf("transcript = %q", data)
	}
}

func TestLocalSinkRefusesOverwrite(t *testing.T) {
	sink := NewLocalSink(t.TempDir())
	key := "transcripts/room_x_20260301T000000Z.txt"

	if _, err := sink.Put(context.Background(), key, strings.NewReader("first")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := sink.Put(context.Background(), key, strings.NewReader("second")); err == nil {
		t.Fatal("existing transcript must not be overwritten")
	}
}

func TestTranscriptKey(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	got := TranscriptKey("transcripts", "room", "abc", at)
	want := "transcripts/room_abc_20260301T093000Z.txt"
	if got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}
