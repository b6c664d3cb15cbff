package ws

import (
	"context"
	"net/http"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/services"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager       *WebSocketManager
	Chat          services.ChatService
	Notifications services.NotificationService
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler; allowedOrigins пустой или ["*"] - пускать всех
func NewWebSocketHandler(
	manager *WebSocketManager,
	chat services.ChatService,
	notifications services.NotificationService,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		Manager:       manager,
		Chat:          chat,
		Notifications: notifications,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeWS ожидает identity, которую положил AuthMiddleware
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	identity, ok := auth.CurrentUser(c.Request.Context())
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade error", "error", err)
		return
	}

	// контекст запроса отменяется после возврата из хэндлера, соединению нужен свой
	client := newClient(context.WithoutCancel(c.Request.Context()), identity, conn, h)
	if !h.Manager.Register(client) {
		client.shutdown()
		conn.Close()
		return
	}
	logger.CtxInfo(c.Request.Context(), "WebSocket client connected")

	go client.writePump()
	go client.readPump()
}
