/*
Package errs provides the typed error results used across the server.

Error codes identify specific business or system failures both internally
and in responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Conversation Business Logic Errors
const (
	// ErrAddressingInvalid indicates a message that names neither or both of
	// a receiver identity and a room identifier.
	ErrAddressingInvalid = 2001

	// ErrMessageEmpty indicates a message with no text and no attachment.
	ErrMessageEmpty = 2002

	// ErrMessageTooLong indicates message text over the size limit.
	ErrMessageTooLong = 2003

	// ErrRoomNotFound indicates an operation on a room that does not exist.
	ErrRoomNotFound = 2101

	// ErrRoomMembersTooFew indicates room creation with fewer than two members.
	ErrRoomMembersTooFew = 2102

	// ErrNotRoomMember indicates an operation that requires room membership
	// by an identity that holds none.
	ErrNotRoomMember = 2103

	// ErrMessageNotFound indicates an operation on a missing message.
	ErrMessageNotFound = 2201

	// ErrNotMessageOwner indicates a delete attempt by someone other than the sender.
	ErrNotMessageOwner = 2202

	// ErrUserNotFound indicates an unknown user identity.
	ErrUserNotFound = 2301
)

// 3xxx: Identity and Session Errors
const (
	// ErrUnauthorized indicates a missing or unverifiable identity token.
	ErrUnauthorized = 3001

	// ErrSessionReplaced indicates the connection was closed because the
	// identity authenticated on a newer connection.
	ErrSessionReplaced = 3002
)

// 4xxx: Attachment and File Errors
const (
	// ErrFileTypeInvalid indicates a file name or MIME type outside the allow list.
	ErrFileTypeInvalid = 4001

	// ErrFileSizeTooLarge indicates an attachment over the size limit.
	ErrFileSizeTooLarge = 4002

	// ErrAttachmentKeyInvalid indicates an attachment key outside the
	// requester's conversation scope.
	ErrAttachmentKeyInvalid = 4003

	// ErrFileStorageFailed indicates a storage backend failure while presigning.
	ErrFileStorageFailed = 4004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates a transient persistence failure. Retryable.
	ErrStoreUnavailable = 5001

	// ErrArchiveFailed indicates the archival sink rejected a transcript
	// write. Deletion is aborted when this occurs. Retryable.
	ErrArchiveFailed = 5002
)
