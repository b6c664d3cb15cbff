package ws

import (
	"context"
	"sync"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
)

// WebSocketManager держит подключения по пользователям: у одного пользователя может быть несколько вкладок
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию до отмены ctx, затем закрывает всех клиентов
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.quit)

	for {
		select {
		case <-ctx.Done():
			manager.mu.Lock()
			for _, conns := range manager.clients {
				for client := range conns {
					client.shutdown()
				}
			}
			manager.clients = make(map[string]map[*Client]struct{})
			manager.mu.Unlock()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			conns, ok := manager.clients[client.ID]
			if !ok {
				conns = make(map[*Client]struct{})
				manager.clients[client.ID] = conns
			}
			conns[client] = struct{}{}
			n := len(conns)
			manager.mu.Unlock()
			logger.Info("Client registered", "user_id", client.ID, "connections", n)

		case client := <-manager.unregister:
			manager.mu.Lock()
			if conns, ok := manager.clients[client.ID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					if len(conns) == 0 {
						delete(manager.clients, client.ID)
					}
					logger.Info("Client unregistered", "user_id", client.ID, "connections", len(conns))
				}
			}
			manager.mu.Unlock()
			client.shutdown()
		}
	}
}

// Register блокирует до регистрации; false, если менеджер уже остановлен
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.quit:
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.quit:
		client.shutdown()
	}
}

// BroadcastToClient отправляет событие во все подключения пользователя
func (manager *WebSocketManager) BroadcastToClient(userID string, message any) {
	manager.mu.RLock()
	targets := make([]*Client, 0, len(manager.clients[userID]))
	for client := range manager.clients[userID] {
		targets = append(targets, client)
	}
	manager.mu.RUnlock()

	for _, client := range targets {
		client.send(message)
	}
}

// NewMessage - доставка уведомления о новом сообщении в открытые вкладки получателя
func (manager *WebSocketManager) NewMessage(_ context.Context, recipientID string, msg models.Message) {
	manager.BroadcastToClient(recipientID, OutgoingWSMessage{
		Type:       EventNewMessage,
		ChannelKey: msg.ChannelKey.String(),
		Data:       msg,
	})
}

// GetClientCount возвращает количество подключений
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	total := 0
	for _, conns := range manager.clients {
		total += len(conns)
	}
	return total
}
