package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/metrics"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/ratelimit"
	"jobboard_backend/internal/realtime"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/pkg/apperrors"
)

const defaultMaxMessageLength = 4000

type ChatService interface {
	SendMessage(ctx context.Context, actor auth.Identity, key models.ChannelKey, text string) (*models.Message, error)
	ListMessages(ctx context.Context, actor auth.Identity, key models.ChannelKey) ([]models.Message, error)
	// Subscribe открывает живую подписку на переписку. Каждое изменение доставляет
	// полный упорядоченный список сообщений, после чего входящие непрочитанные
	// помечаются прочитанными. Подписка живёт до Close или отмены ctx.
	Subscribe(ctx context.Context, actor auth.Identity, key models.ChannelKey, onUpdate func(ChannelUpdate)) (*ChannelSubscription, error)
}

// ChannelUpdate - снимок переписки либо ошибка чтения
type ChannelUpdate struct {
	Key      models.ChannelKey
	Messages []models.Message
	Err      error
}

// ChannelSubscription - владеющий дескриптор подписки
type ChannelSubscription struct {
	key    models.ChannelKey
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *ChannelSubscription) Key() models.ChannelKey {
	return s.key
}

// Close идемпотентен и не ждёт завершения; дождаться можно через Done.
// Безопасно вызывать из onUpdate.
func (s *ChannelSubscription) Close() {
	s.once.Do(s.cancel)
}

// Done закрывается, когда подписка отпустила ресурсы. После этого onUpdate не вызывается.
func (s *ChannelSubscription) Done() <-chan struct{} {
	return s.done
}

type ChatOptions struct {
	MaxMessageLength int
	Limiter          ratelimit.Limiter
	Notifier         Notifier
}

type chatService struct {
	appRepo     repositories.ApplicationRepository
	messageRepo repositories.MessageRepository
	broker      realtime.Broker
	limiter     ratelimit.Limiter
	notifier    Notifier
	maxLength   int
}

func NewChatService(
	appRepo repositories.ApplicationRepository,
	messageRepo repositories.MessageRepository,
	broker realtime.Broker,
	opts ChatOptions,
) ChatService {
	s := &chatService{
		appRepo:     appRepo,
		messageRepo: messageRepo,
		broker:      broker,
		limiter:     opts.Limiter,
		notifier:    opts.Notifier,
		maxLength:   opts.MaxMessageLength,
	}
	if s.maxLength <= 0 {
		s.maxLength = defaultMaxMessageLength
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{}
	}
	return s
}

func (s *chatService) SendMessage(ctx context.Context, actor auth.Identity, key models.ChannelKey, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if n := utf8.RuneCountInString(text); n > s.maxLength {
		return nil, apperrors.ValidationError(map[string]string{
			"text": fmt.Sprintf("Must be at most %d characters long", s.maxLength),
		})
	}

	if _, err := s.openChannel(ctx, actor, key); err != nil {
		return nil, err
	}

	if s.limiter != nil && !s.limiter.Allow(actor.UserID) {
		return nil, apperrors.ErrTooManyMessages
	}

	msg := &models.Message{
		ChannelKey: key,
		Text:       text,
		SenderID:   actor.UserID,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		logger.CtxWithError(ctx, "Failed to store message", err, "channel", key.String())
		return nil, apperrors.ErrStore(err)
	}

	metrics.RecordMessageSent()
	publish(ctx, s.broker, realtime.ChannelTopic(key))
	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, actor auth.Identity, key models.ChannelKey) ([]models.Message, error) {
	if _, err := s.openChannel(ctx, actor, key); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindByChannel(ctx, key)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to read messages", err, "channel", key.String())
		return nil, apperrors.ErrStore(err)
	}
	return messages, nil
}

func (s *chatService) Subscribe(ctx context.Context, actor auth.Identity, key models.ChannelKey, onUpdate func(ChannelUpdate)) (*ChannelSubscription, error) {
	if onUpdate == nil {
		return nil, apperrors.NewBadRequestError("onUpdate callback is required")
	}
	if _, err := s.openChannel(ctx, actor, key); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(logger.WithChannel(ctx, key.String()))
	sub := &ChannelSubscription{
		key:    key,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// слушатель регистрируется до первого чтения, чтобы не потерять изменение между ними
	listener := s.broker.Subscribe(realtime.ChannelTopic(key))
	metrics.SubscriptionOpened("channel")

	go s.runSubscription(subCtx, sub, listener, actor.UserID, onUpdate)
	return sub, nil
}

func (s *chatService) runSubscription(ctx context.Context, sub *ChannelSubscription, listener realtime.Listener, viewerID string, onUpdate func(ChannelUpdate)) {
	defer close(sub.done)
	defer metrics.SubscriptionClosed("channel")
	defer listener.Close()

	s.deliver(ctx, sub.key, viewerID, onUpdate)
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.C():
			s.deliver(ctx, sub.key, viewerID, onUpdate)
		}
	}
}

// deliver: сначала снимок, потом отметка прочтения
func (s *chatService) deliver(ctx context.Context, key models.ChannelKey, viewerID string, onUpdate func(ChannelUpdate)) {
	messages, err := s.messageRepo.FindByChannel(ctx, key)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.CtxWithError(ctx, "Failed to read messages for subscription", err)
		onUpdate(ChannelUpdate{Key: key, Err: apperrors.ErrStore(err)})
		return
	}

	onUpdate(ChannelUpdate{Key: key, Messages: messages})
	s.markRead(ctx, key, viewerID, messages)
}

func (s *chatService) markRead(ctx context.Context, key models.ChannelKey, viewerID string, messages []models.Message) {
	changed := false
	for _, msg := range messages {
		if !msg.IsUnreadFor(viewerID) {
			continue
		}
		flipped, err := s.messageRepo.MarkRead(ctx, msg.ID)
		if err != nil {
			logger.CtxWarn(ctx, "Failed to mark message as read", "message_id", msg.ID, "error", err)
			continue
		}
		if !flipped {
			// уже отмечено другой подпиской
			continue
		}
		changed = true
		msg.Read = true
		metrics.RecordMessageRead()
		s.notifier.NewMessage(ctx, viewerID, msg)
	}
	if changed {
		publish(ctx, s.broker, realtime.ChannelTopic(key))
	}
}

// openChannel проверяет, что ключ указывает на принятый отклик и actor - его участник
func (s *chatService) openChannel(ctx context.Context, actor auth.Identity, key models.ChannelKey) (*models.Application, error) {
	if actor.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}
	if key.IsZero() {
		return nil, apperrors.NewBadRequestError("Channel key is required")
	}
	if actor.UserID != key.CreatorID && actor.UserID != key.ApplicantID {
		return nil, apperrors.ErrChannelAccessDenied
	}

	app, err := s.appRepo.FindByChannel(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrStaleReference(err, "chat", "Conversation not found")
		}
		logger.CtxWithError(ctx, "Failed to resolve channel", err, "channel", key.String())
		return nil, apperrors.ErrStore(err)
	}
	if !app.CanMessage() {
		return nil, apperrors.ErrChannelClosed
	}
	return app, nil
}
