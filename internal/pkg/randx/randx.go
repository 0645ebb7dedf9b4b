/*
Package randx generates the unique identifiers the server hands out.

Room and attachment identifiers are UUID v4 strings; user identities arrive
already minted by the identity service and are only validated here.
*/
package randx

import "github.com/google/uuid"

// RoomID returns a fresh room identifier.
func RoomID() string {
	return uuid.New().String()
}

// FileID returns a fresh identifier for an uploaded attachment object.
func FileID() string {
	return uuid.New().String()
}

// IsValidIdentifier reports whether s parses as a UUID. Used to vet user and
// room identifiers arriving from clients before they reach the store.
func IsValidIdentifier(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
