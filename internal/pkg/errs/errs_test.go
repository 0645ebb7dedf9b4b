package errs

import (
	"net/http"
	"testing"
)

func TestNewErrorKnownCode(t *testing.T) {
	customErr := NewError(ErrNotRoomMember)

	if customErr.Code != ErrNotRoomMember {
		t.Fatalf("code = %d, want %d", customErr.Code, ErrNotRoomMember)
	}
	if customErr.Status != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", customErr.Status, http.StatusForbidden)
	}
	if customErr.Message == "" {
		t.Fatal("message must not be empty")
	}
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	customErr := NewError(999999)

	if customErr.Code != ErrUnknown {
		t.Fatalf("code = %d, want %d", customErr.Code, ErrUnknown)
	}
}

func TestNewErrorTemplateDetails(t *testing.T) {
	customErr := NewError(ErrRoomMembersTooFew, 2)

	if customErr.Message == "" || customErr.Message == NewError(ErrRoomMembersTooFew).Message {
		// The template carries a placeholder; the detail must land in it.
		t.Fatalf("detail not applied: %q", customErr.Message)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{code: ErrStoreUnavailable, want: true},
		{code: ErrArchiveFailed, want: true},
		{code: ErrNotRoomMember, want: false},
		{code: ErrAddressingInvalid, want: false},
	}

	for _, tt := range tests {
		if got := NewError(tt.code).Retryable(); got != tt.want {
			t.Fatalf("Retryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
