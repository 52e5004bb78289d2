package handler

import (
	"net/http"
	"strconv"
	"time"

	"linkup/backend/internal/hub"
	"linkup/backend/internal/models"
	"linkup/backend/internal/store"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SendMessageInput defines the payload for sending a direct message.
type SendMessageInput struct {
	ToUserID uint   `json:"to_user_id" binding:"required" example:"2"`
	Content  string `json:"content" binding:"required" example:"hello"`
}

// UpdateMessageInput defines the payload for mutating a message.
type UpdateMessageInput struct {
	Content *string `json:"content"`
	IsNew   *bool   `json:"is_new"`
}

// MessageResponse defines the structure for a direct message.
type MessageResponse struct {
	ID         uint      `json:"id"`
	Content    string    `json:"content"`
	FromUserID uint      `json:"from_user_id"`
	ToUserID   uint      `json:"to_user_id"`
	IsNew      bool      `json:"is_new"`
	SentOn     time.Time `json:"sent_on"`
}

func newMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:         message.ID,
		Content:    message.Content,
		FromUserID: message.FromUserID,
		ToUserID:   message.ToUserID,
		IsNew:      message.IsNew,
		SentOn:     message.SentOn,
	}
}

// endregion

// SendMessage godoc
// @Summary      Send a message
// @Description  Sends a direct message to a confirmed friend.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendMessageInput true "Message"
// @Success      201  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse "Empty content or users not friends"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Recipient has blocked the sender"
// @Router       /messages [post]
func SendMessage(c *gin.Context) {
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := messaging.SendMessage(input.Content, currentUserID(c), input.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	hub.GlobalHub.Notify(message.ToUserID, hub.Event{
		Type:    "message.created",
		Payload: newMessageResponse(*message),
	})

	c.JSON(http.StatusCreated, newMessageResponse(*message))
}

// ListConversation godoc
// @Summary      List a conversation
// @Description  Lists the messages exchanged with another user in both directions, newest first.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true   "Other user's ID"
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200  {object}  PaginatedResponse[MessageResponse]
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User absent or not a friend"
// @Router       /messages/with/{id} [get]
func ListConversation(c *gin.Context) {
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	page, limit := parsePageLimit(c)

	messages, total, err := messaging.ListConversation(currentUserID(c), uint(otherID), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, newMessageResponse(message))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(responses, total, page, limit))
}

// UpdateMessage godoc
// @Summary      Update a message
// @Description  Edits the content or marks the message read. Either participant may do this.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Message ID"
// @Param        input body      UpdateMessageInput true  "Fields to update"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [put]
func UpdateMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	var input UpdateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := messaging.UpdateMessage(currentUserID(c), uint(id), store.UpdateMessageParams{
		Content: input.Content,
		IsNew:   input.IsNew,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMessageResponse(*message))
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Description  Removes a message. Either participant may do this.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Message ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/{id} [delete]
func DeleteMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := messaging.DeleteMessage(currentUserID(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
