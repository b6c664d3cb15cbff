package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/pkg/apperrors"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBufferSize = 256
)

// Действия клиента
const (
	ActionSubscribe    = "subscribe"
	ActionUnsubscribe  = "unsubscribe"
	ActionSendMessage  = "send_message"
	ActionWatchUnread  = "watch_unread"
	ActionWatchPending = "watch_pending"
)

// События сервера
const (
	EventSnapshot    = "snapshot"
	EventUnread      = "unread"
	EventPending     = "pending"
	EventNewMessage  = "new_message"
	EventMessageSent = "message_sent"
	EventError       = "error"
)

type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type OutgoingWSMessage struct {
	Type       string `json:"type"`
	ChannelKey string `json:"channel_key,omitempty"`
	Data       any    `json:"data,omitempty"`
}

type channelPayload struct {
	ChannelKey string `json:"channel_key"`
}

type sendMessagePayload struct {
	ChannelKey string `json:"channel_key"`
	Text       string `json:"text"`
}

type Client struct {
	ID       string
	Identity auth.Identity
	Conn     *websocket.Conn
	Send     chan any
	Ctx      context.Context

	Manager       *WebSocketManager
	Chat          services.ChatService
	Notifications services.NotificationService

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	subs    map[string]*services.ChannelSubscription
	watches map[string]*services.Watch
}

func newClient(ctx context.Context, identity auth.Identity, conn *websocket.Conn, h *WebSocketHandler) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		ID:            identity.UserID,
		Identity:      identity,
		Conn:          conn,
		Send:          make(chan any, sendBufferSize),
		Ctx:           ctx,
		Manager:       h.Manager,
		Chat:          h.Chat,
		Notifications: h.Notifications,
		cancel:        cancel,
		done:          make(chan struct{}),
		subs:          make(map[string]*services.ChannelSubscription),
		watches:       make(map[string]*services.Watch),
	}
}

// shutdown отпускает все подписки клиента; повторные вызовы ничего не делают
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)

		c.mu.Lock()
		for key, sub := range c.subs {
			sub.Close()
			delete(c.subs, key)
		}
		for kind, w := range c.watches {
			w.Close()
			delete(c.watches, kind)
		}
		c.mu.Unlock()
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// send не блокирует: медленный клиент отключается
func (c *Client) send(message any) {
	if c.closed() {
		return
	}
	select {
	case c.Send <- message:
	case <-c.done:
	default:
		logger.CtxWarn(c.Ctx, "WebSocket send buffer full, dropping client")
		go c.Manager.Unregister(c)
	}
}

func (c *Client) sendError(channelKey string, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.InternalError(err)
	}
	c.send(OutgoingWSMessage{Type: EventError, ChannelKey: channelKey, Data: appErr})
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.CtxWarn(c.Ctx, "WebSocket read error", "error", err)
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.sendError("", apperrors.NewBadRequestError("Invalid message format"))
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.CtxWarn(c.Ctx, "WebSocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Централизованный обработчик
func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {
	case ActionSubscribe:
		key, ok := c.decodeChannel(msg.Data)
		if ok {
			c.subscribe(key)
		}

	case ActionUnsubscribe:
		key, ok := c.decodeChannel(msg.Data)
		if ok {
			c.unsubscribe(key)
		}

	case ActionSendMessage:
		var payload sendMessagePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError("", apperrors.NewBadRequestError("Invalid send_message payload"))
			return
		}
		key, ok := c.parseChannel(payload.ChannelKey)
		if !ok {
			return
		}
		created, err := c.Chat.SendMessage(c.Ctx, c.Identity, key, payload.Text)
		if err != nil {
			c.sendError(payload.ChannelKey, err)
			return
		}
		c.send(OutgoingWSMessage{Type: EventMessageSent, ChannelKey: payload.ChannelKey, Data: created})

	case ActionWatchUnread:
		c.watch(ActionWatchUnread, func() (*services.Watch, error) {
			return c.Notifications.WatchUnread(c.Ctx, c.Identity, func(unread map[string]bool) {
				c.send(OutgoingWSMessage{Type: EventUnread, Data: unread})
			})
		})

	case ActionWatchPending:
		c.watch(ActionWatchPending, func() (*services.Watch, error) {
			return c.Notifications.WatchPending(c.Ctx, c.Identity, func(count int64) {
				c.send(OutgoingWSMessage{Type: EventPending, Data: map[string]int64{"count": count}})
			})
		})

	default:
		c.sendError("", apperrors.NewBadRequestError("Unknown action: "+msg.Action))
	}
}

func (c *Client) decodeChannel(data json.RawMessage) (models.ChannelKey, bool) {
	var payload channelPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("", apperrors.NewBadRequestError("Invalid channel payload"))
		return models.ChannelKey{}, false
	}
	return c.parseChannel(payload.ChannelKey)
}

func (c *Client) parseChannel(raw string) (models.ChannelKey, bool) {
	key, err := models.ParseChannelKey(raw)
	if err == nil {
		err = key.ValidateJobID()
	}
	if err != nil {
		c.sendError(raw, apperrors.NewBadRequestError("Invalid channel key"))
		return models.ChannelKey{}, false
	}
	return key, true
}

func (c *Client) subscribe(key models.ChannelKey) {
	topic := key.String()

	c.mu.Lock()
	_, exists := c.subs[topic]
	c.mu.Unlock()
	if exists {
		return
	}

	sub, err := c.Chat.Subscribe(c.Ctx, c.Identity, key, func(update services.ChannelUpdate) {
		if update.Err != nil {
			c.sendError(topic, update.Err)
			return
		}
		c.send(OutgoingWSMessage{Type: EventSnapshot, ChannelKey: topic, Data: update.Messages})
	})
	if err != nil {
		c.sendError(topic, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed() {
		sub.Close()
		return
	}
	c.subs[topic] = sub
}

func (c *Client) unsubscribe(key models.ChannelKey) {
	c.mu.Lock()
	sub, ok := c.subs[key.String()]
	delete(c.subs, key.String())
	c.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// watch открывает наблюдение один раз на соединение
func (c *Client) watch(kind string, open func() (*services.Watch, error)) {
	c.mu.Lock()
	_, exists := c.watches[kind]
	c.mu.Unlock()
	if exists {
		return
	}

	w, err := open()
	if err != nil {
		c.sendError("", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed() {
		w.Close()
		return
	}
	c.watches[kind] = w
}
