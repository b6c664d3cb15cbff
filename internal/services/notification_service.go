package services

import (
	"context"
	"sync"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/metrics"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/realtime"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/pkg/apperrors"
)

// NotificationService - производные счётчики: ничего не хранит, всё пересчитывает.
type NotificationService interface {
	PendingBadge(ctx context.Context, actor auth.Identity) (int64, error)
	// WatchPending присылает счётчик pending-откликов при каждом изменении откликов работодателя
	WatchPending(ctx context.Context, actor auth.Identity, onChange func(int64)) (*Watch, error)
	// WatchUnread присылает карту channelKey -> есть непрочитанное входящее
	// по всем принятым откликам пользователя. Прочтение не отмечает.
	WatchUnread(ctx context.Context, actor auth.Identity, onChange func(map[string]bool)) (*Watch, error)
}

// Watch - владеющий дескриптор наблюдения; Close отпускает все внутренние подписки
type Watch struct {
	kind      string
	cancel    context.CancelFunc
	once      sync.Once
	wg        sync.WaitGroup
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
	listeners []realtime.Listener
}

func newWatch(kind string, cancel context.CancelFunc) *Watch {
	metrics.SubscriptionOpened(kind)
	return &Watch{kind: kind, cancel: cancel, done: make(chan struct{})}
}

// track запоминает слушателя; если наблюдение уже закрыто, сразу его отпускает
func (w *Watch) track(l realtime.Listener) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		l.Close()
		return false
	}
	w.listeners = append(w.listeners, l)
	return true
}

func (w *Watch) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close идемпотентен, не ждёт горутины
func (w *Watch) Close() {
	w.once.Do(func() {
		w.cancel()

		w.mu.Lock()
		w.closed = true
		for _, l := range w.listeners {
			l.Close()
		}
		w.listeners = nil
		w.mu.Unlock()

		metrics.SubscriptionClosed(w.kind)
		go func() {
			w.wg.Wait()
			close(w.done)
		}()
	})
}

// Done закрывается после выхода всех горутин наблюдения
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

type notificationService struct {
	appService  ApplicationService
	appRepo     repositories.ApplicationRepository
	messageRepo repositories.MessageRepository
	broker      realtime.Broker
}

func NewNotificationService(
	appService ApplicationService,
	appRepo repositories.ApplicationRepository,
	messageRepo repositories.MessageRepository,
	broker realtime.Broker,
) NotificationService {
	return &notificationService{
		appService:  appService,
		appRepo:     appRepo,
		messageRepo: messageRepo,
		broker:      broker,
	}
}

func (s *notificationService) PendingBadge(ctx context.Context, actor auth.Identity) (int64, error) {
	if !actor.Can(auth.PermApplicationsReview) {
		return 0, apperrors.ErrCreatorRoleRequired
	}
	return s.appService.PendingCount(ctx, actor.UserID)
}

func (s *notificationService) WatchPending(ctx context.Context, actor auth.Identity, onChange func(int64)) (*Watch, error) {
	if !actor.Can(auth.PermApplicationsReview) {
		return nil, apperrors.ErrCreatorRoleRequired
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w := newWatch("pending", cancel)
	listener := s.broker.Subscribe(realtime.UserTopic(actor.UserID))
	w.track(listener)

	count, err := s.appService.PendingCount(watchCtx, actor.UserID)
	if err != nil {
		w.Close()
		return nil, err
	}
	onChange(count)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.Close()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-listener.C():
				count, err := s.appService.PendingCount(watchCtx, actor.UserID)
				if watchCtx.Err() != nil {
					return
				}
				if err != nil {
					logger.CtxWarn(watchCtx, "Failed to recount pending applications", "error", err)
					continue
				}
				onChange(count)
			}
		}
	}()
	return w, nil
}

func (s *notificationService) WatchUnread(ctx context.Context, actor auth.Identity, onChange func(map[string]bool)) (*Watch, error) {
	if actor.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	uw := &unreadWatch{
		Watch:    newWatch("unread", cancel),
		svc:      s,
		viewerID: actor.UserID,
		onChange: onChange,
		channels: make(map[string]bool),
		unread:   make(map[string]bool),
	}

	// новые принятые отклики приходят сигналом в топик пользователя
	userListener := s.broker.Subscribe(realtime.UserTopic(actor.UserID))
	uw.track(userListener)

	if err := uw.syncChannels(watchCtx); err != nil {
		uw.Close()
		return nil, err
	}
	uw.emit()

	uw.wg.Add(1)
	go func() {
		defer uw.wg.Done()
		defer uw.Close()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-userListener.C():
				if err := uw.syncChannels(watchCtx); err != nil {
					if watchCtx.Err() != nil {
						return
					}
					logger.CtxWarn(watchCtx, "Failed to refresh conversations", "error", err)
					continue
				}
				uw.emit()
			}
		}
	}()

	return uw.Watch, nil
}

type unreadWatch struct {
	*Watch
	svc      *notificationService
	viewerID string
	onChange func(map[string]bool)

	stateMu  sync.Mutex
	channels map[string]bool // переписки, на которые уже есть слушатель
	unread   map[string]bool

	emitMu sync.Mutex
}

// syncChannels подписывается на переписки принятых откликов, которых ещё нет в наблюдении
func (w *unreadWatch) syncChannels(ctx context.Context) error {
	apps, err := w.svc.appRepo.FindAcceptedForUser(ctx, w.viewerID)
	if err != nil {
		return apperrors.ErrStore(err)
	}

	for i := range apps {
		key := apps[i].ChannelKey()
		topic := key.String()

		w.stateMu.Lock()
		known := w.channels[topic]
		w.stateMu.Unlock()
		if known {
			continue
		}

		unread, err := w.isUnread(ctx, key)
		if err != nil {
			return err
		}

		listener := w.svc.broker.Subscribe(realtime.ChannelTopic(key))
		if !w.track(listener) {
			return context.Canceled
		}

		w.stateMu.Lock()
		w.channels[topic] = true
		w.unread[topic] = unread
		w.stateMu.Unlock()

		w.wg.Add(1)
		go w.watchChannel(ctx, key, listener)
	}
	return nil
}

func (w *unreadWatch) watchChannel(ctx context.Context, key models.ChannelKey, listener realtime.Listener) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.C():
			unread, err := w.isUnread(ctx, key)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.CtxWarn(ctx, "Failed to recompute unread flag", "channel", key.String(), "error", err)
				continue
			}
			w.stateMu.Lock()
			w.unread[key.String()] = unread
			w.stateMu.Unlock()
			w.emit()
		}
	}
}

// isUnread: последнее сообщение от собеседника и не прочитано
func (w *unreadWatch) isUnread(ctx context.Context, key models.ChannelKey) (bool, error) {
	last, err := w.svc.messageRepo.FindLast(ctx, key)
	if err != nil {
		return false, apperrors.ErrStore(err)
	}
	return last != nil && last.IsUnreadFor(w.viewerID), nil
}

func (w *unreadWatch) emit() {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	w.stateMu.Lock()
	snapshot := make(map[string]bool, len(w.unread))
	for k, v := range w.unread {
		snapshot[k] = v
	}
	w.stateMu.Unlock()

	if w.isClosed() {
		return
	}
	w.onChange(snapshot)
}
