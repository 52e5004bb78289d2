package handler

import (
	"io"

	"linkup/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// StreamEvents godoc
// @Summary      Stream events
// @Description  Opens a server-sent-events stream delivering new friend requests and messages to the authenticated user.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string  "event stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /events [get]
func StreamEvents(c *gin.Context) {
	userID := currentUserID(c)

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(userID, client)
	defer hub.GlobalHub.Unsubscribe(userID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
