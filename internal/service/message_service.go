package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kursplatform/kurs-api/internal/models"
	appErrors "github.com/kursplatform/kurs-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	FindDetailByID(ctx context.Context, id string) (*models.MessageDetail, error)
	ListByUser(ctx context.Context, userID string) ([]models.MessageDetail, error)
	ListConversation(ctx context.Context, userID, otherID string) ([]models.MessageDetail, error)
	MarkRead(ctx context.Context, id string) error
}

type messageUserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SendMessageRequest is the direct message payload.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=1000"`
}

// MessageService handles direct messaging between users.
type MessageService struct {
	repo      messageRepository
	users     messageUserFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, users messageUserFinder, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, users: users, validator: validate, logger: logger}
}

// Send delivers a message from the caller to another user.
func (s *MessageService) Send(ctx context.Context, senderID string, req SendMessageRequest) (*models.MessageDetail, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	if req.ReceiverID == senderID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Kendinize mesaj gönderemezsiniz")
	}

	if _, err := s.users.FindByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Alıcı kullanıcı bulunamadı")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receiver")
	}

	message := &models.Message{
		Content:    req.Content,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create message")
	}

	detail, err := s.repo.FindDetailByID(ctx, message.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}

	s.logger.Info("message sent", zap.String("sender_id", senderID), zap.String("receiver_id", req.ReceiverID))
	return detail, nil
}

// Inbox returns everything the caller sent or received, newest first.
func (s *MessageService) Inbox(ctx context.Context, userID string) ([]models.MessageDetail, error) {
	messages, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Conversation returns the exchange between the caller and another user
// in chronological order.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]models.MessageDetail, error) {
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Kullanıcı bulunamadı")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	messages, err := s.repo.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conversation")
	}
	return messages, nil
}

// MarkRead flags a received message as read. Only the receiver may do so.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) error {
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Mesaj bulunamadı")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	if message.ReceiverID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "Bu mesaj size ait değil")
	}
	if message.IsRead {
		return nil
	}

	if err := s.repo.MarkRead(ctx, messageID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	return nil
}
