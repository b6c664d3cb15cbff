package handlers

import (
	"net/http"

	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	chats := r.Group("/chats")
	chats.Use(authMiddleware)
	{
		chats.GET("/:channelKey/messages", h.GetMessages)
		chats.POST("/:channelKey/messages", h.SendMessage)
	}
}

// GetMessages godoc
// @Summary Сообщения переписки
// @Description Чтение по HTTP не отмечает сообщения прочитанными
// @Tags chats
// @Security BearerAuth
// @Produce json
// @Param channelKey path string true "jobId_creatorId_applicantId"
// @Success 200 {object} dto.MessageListResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /chats/{channelKey}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}
	key, err := ChannelKeyParam(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), actor, key)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageListResponse{
		ChannelKey: key.String(),
		Messages:   messages,
		Total:      len(messages),
	})
}

// SendMessage godoc
// @Summary Отправить сообщение
// @Tags chats
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param channelKey path string true "jobId_creatorId_applicantId"
// @Param message body dto.SendMessageRequest true "Текст"
// @Success 201 {object} models.Message
// @Failure 403 {object} apperrors.ErrorResponse "Переписка закрыта"
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /chats/{channelKey}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := h.Identity(c)
	if !ok {
		return
	}
	key, err := ChannelKeyParam(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), actor, key, req.Text)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
