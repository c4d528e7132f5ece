package handlers

import (
	"net/http"
	"strconv"

	"campus-agent/chat"
	"campus-agent/database"
	apperrors "campus-agent/errors"
	"campus-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatHandler struct {
	service *chat.Service
	logger  *zap.Logger
}

func NewChatHandler(service *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

type createChatRequest struct {
	Title        string `json:"title"`
	UniversityID *int64 `json:"university_id"`
	DepartmentID *int64 `json:"department_id"`
}

func (h *ChatHandler) Create(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		req.Title = "New Conversation"
	}

	actor := middleware.ActorFrom(c)
	newChat := database.Chat{
		ID:           uuid.New(),
		Title:        req.Title,
		UniversityID: req.UniversityID,
		DepartmentID: req.DepartmentID,
	}
	if actor.UserID != 0 {
		newChat.UserID = &actor.UserID
	}
	// Actors bound to a university always chat within it.
	if newChat.UniversityID == nil && actor.UniversityID != 0 {
		newChat.UniversityID = &actor.UniversityID
	}

	created, err := h.service.CreateChat(c.Request.Context(), newChat)
	if err != nil {
		h.logger.Error("Failed to create chat", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": created})
}

func (h *ChatHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	userID := actor.UserID
	if v, err := strconv.ParseInt(c.Query("user_id"), 10, 64); err == nil && userID == 0 {
		userID = v
	}

	chats, err := h.service.ListChats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list chats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (h *ChatHandler) Get(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	found, messages, err := h.service.ChatWithMessages(c.Request.Context(), chatID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": found, "messages": messages})
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message cannot be empty"})
		return
	}

	turn, err := h.service.SendMessage(c.Request.Context(), chatID, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := gin.H{
		"user_message": turn.UserMessage,
		"ai_message":   turn.AssistantMessage,
		"chat_title":   turn.ChatTitle,
	}
	if turn.Degraded {
		response["warning"] = "API_ERROR"
	}
	c.JSON(http.StatusOK, response)
}

type renameChatRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *ChatHandler) Rename(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req renameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
		return
	}

	if err := h.service.RenameChat(c.Request.Context(), chatID, req.Title); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chat renamed"})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	if err := h.service.DeleteChat(c.Request.Context(), chatID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chat deleted"})
}

func (h *ChatHandler) writeError(c *gin.Context, err error) {
	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	h.logger.Error("Chat operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "chat operation failed"})
}
