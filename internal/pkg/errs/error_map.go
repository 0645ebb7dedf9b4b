/*
Package errs provides the typed error results used across the server.

This file maps every error code to its CustomError template, standardizing
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status means HTTP 200 with a non-zero business code in the envelope.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Conversation Business Logic Errors
	ErrAddressingInvalid: {Code: ErrAddressingInvalid, Message: "A message needs exactly one destination: a receiver or a room."},
	ErrMessageEmpty:      {Code: ErrMessageEmpty, Message: "Message has no content."},
	ErrMessageTooLong:    {Code: ErrMessageTooLong, Message: "Message is too long."},
	ErrRoomNotFound:      {Code: ErrRoomNotFound, Message: "Chat room not found.", Status: http.StatusNotFound},
	ErrRoomMembersTooFew: {Code: ErrRoomMembersTooFew, Message: "A group room needs at least %d members."},
	ErrNotRoomMember:     {Code: ErrNotRoomMember, Message: "You are not a member of this room.", Status: http.StatusForbidden},
	ErrMessageNotFound:   {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusNotFound},
	ErrNotMessageOwner:   {Code: ErrNotMessageOwner, Message: "Only the sender can delete a message.", Status: http.StatusForbidden},
	ErrUserNotFound:      {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},

	// 3xxx: Identity and Session Errors
	ErrUnauthorized:    {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrSessionReplaced: {Code: ErrSessionReplaced, Message: "You signed in on another connection."},

	// 4xxx: Attachment and File Errors
	ErrFileTypeInvalid:      {Code: ErrFileTypeInvalid, Message: "This file type is not allowed."},
	ErrFileSizeTooLarge:     {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrAttachmentKeyInvalid: {Code: ErrAttachmentKeyInvalid, Message: "Invalid attachment."},
	ErrFileStorageFailed:    {Code: ErrFileStorageFailed, Message: "File operation failed. Please try again."},

	// 5xxx: Internal System Errors
	ErrUnknown:          {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable: {Code: ErrStoreUnavailable, Message: "Storage is temporarily unavailable. Please retry.", Status: http.StatusServiceUnavailable},
	ErrArchiveFailed:    {Code: ErrArchiveFailed, Message: "Could not archive the conversation. Nothing was deleted.", Status: http.StatusServiceUnavailable},
}
