package chat

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"teamchat/internal/app/store"
	"teamchat/internal/app/user"
	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/randx"
)

// maxMessageBytes bounds the text of a single message.
const maxMessageBytes = 5000

// SendStore is the persistence surface the send pipeline needs.
type SendStore interface {
	InsertMessage(ctx context.Context, m store.Message) (store.Message, error)
	GetRoom(ctx context.Context, roomUUID string) (store.Room, error)
	IsRoomMember(ctx context.Context, roomUUID, userUUID string) (bool, error)
	GetUserByUUID(ctx context.Context, userUUID string) (user.User, error)
	GetMessage(ctx context.Context, id int64) (store.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

// Service validates, persists, and routes outgoing messages. Persistence is
// the gate: a message that fails to persist is never delivered, and a
// persisted message is delivered on a best-effort basis.
type Service struct {
	store  SendStore
	router *Router
	logger zerolog.Logger
}

func NewService(sendStore SendStore, router *Router, logger zerolog.Logger) *Service {
	return &Service{
		store:  sendStore,
		router: router,
		logger: logger.With().Str("component", "chat").Logger(),
	}
}

// SendInput is one send request. Exactly one of ReceiverUUID and RoomUUID
// must be set.
type SendInput struct {
	ReceiverUUID string
	RoomUUID     string
	Text         string
	FileKey      string
	FileName     string
	FileType     string
}

// Send runs the full pipeline: validate addressing and content, check the
// sender's standing, persist, then fan out to live recipients. The returned
// message carries the id and commit timestamp assigned by the store.
func (s *Service) Send(ctx context.Context, senderUUID string, in SendInput) (store.Message, *errs.CustomError) {
	if err := s.validate(ctx, senderUUID, in); err != nil {
		return store.Message{}, err
	}

	msg, err := s.store.InsertMessage(ctx, store.Message{
		SenderUUID:   senderUUID,
		ReceiverUUID: in.ReceiverUUID,
		RoomUUID:     in.RoomUUID,
		Text:         in.Text,
		FileKey:      in.FileKey,
		FileName:     in.FileName,
		FileType:     in.FileType,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("sender_uuid", senderUUID).Msg("persist message")
		return store.Message{}, errs.NewError(errs.ErrStoreUnavailable)
	}

	if err := s.router.Route(ctx, msg); err != nil {
		// Already persisted; recipients catch up via history and unread counts.
		s.logger.Warn().Err(err).Int64("message_id", msg.ID).Msg("route message")
	}
	return msg, nil
}

// Delete removes one message and returns the removed row so callers can
// clean up any attachment object. Only the sender may delete their own
// message; recipients and room members cannot.
func (s *Service) Delete(ctx context.Context, requesterUUID string, messageID int64) (store.Message, *errs.CustomError) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Message{}, errs.NewError(errs.ErrMessageNotFound)
		}
		s.logger.Error().Err(err).Int64("message_id", messageID).Msg("look up message")
		return store.Message{}, errs.NewError(errs.ErrStoreUnavailable)
	}
	if msg.SenderUUID != requesterUUID {
		return store.Message{}, errs.NewError(errs.ErrNotMessageOwner)
	}

	if err := s.store.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Message{}, errs.NewError(errs.ErrMessageNotFound)
		}
		s.logger.Error().Err(err).Int64("message_id", messageID).Msg("delete message")
		return store.Message{}, errs.NewError(errs.ErrStoreUnavailable)
	}
	return msg, nil
}

func (s *Service) validate(ctx context.Context, senderUUID string, in SendInput) *errs.CustomError {
	hasReceiver := in.ReceiverUUID != ""
	hasRoom := in.RoomUUID != ""
	if hasReceiver == hasRoom {
		return errs.NewError(errs.ErrAddressingInvalid)
	}

	if in.Text == "" && in.FileKey == "" {
		return errs.NewError(errs.ErrMessageEmpty)
	}
	if len(in.Text) > maxMessageBytes {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	if hasRoom {
		if !randx.IsValidIdentifier(in.RoomUUID) {
			return errs.NewError(errs.ErrRoomNotFound)
		}
		if _, err := s.store.GetRoom(ctx, in.RoomUUID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NewError(errs.ErrRoomNotFound)
			}
			s.logger.Error().Err(err).Str("room_uuid", in.RoomUUID).Msg("look up room")
			return errs.NewError(errs.ErrStoreUnavailable)
		}
		isMember, err := s.store.IsRoomMember(ctx, in.RoomUUID, senderUUID)
		if err != nil {
			s.logger.Error().Err(err).Str("room_uuid", in.RoomUUID).Msg("check membership")
			return errs.NewError(errs.ErrStoreUnavailable)
		}
		if !isMember {
			return errs.NewError(errs.ErrNotRoomMember)
		}
		return nil
	}

	if !randx.IsValidIdentifier(in.ReceiverUUID) {
		return errs.NewError(errs.ErrUserNotFound)
	}
	if _, err := s.store.GetUserByUUID(ctx, in.ReceiverUUID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NewError(errs.ErrUserNotFound)
		}
		s.logger.Error().Err(err).Str("receiver_uuid", in.ReceiverUUID).Msg("look up receiver")
		return errs.NewError(errs.ErrStoreUnavailable)
	}
	return nil
}
