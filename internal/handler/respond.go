package handler

import (
	"net/http"

	"linkup/backend/internal/config"
	"linkup/backend/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

var (
	identity      *store.Identity
	relationships *store.Relationships
	messaging     *store.Messaging
)

// Setup wires the handler package to its stores. Must be called once after
// the database connection is established.
func Setup(db *gorm.DB) {
	identity = store.NewIdentity(db, nil)
	relationships = store.NewRelationships(db, config.AppConfig.StrictFriendDirection)
	messaging = store.NewMessaging(db)
}

// respondError maps a store failure to its status code. Anything that is not
// a typed store error is a 500 with the detail kept out of the response.
func respondError(c *gin.Context, err error) {
	if kind, ok := store.KindOf(err); ok {
		status := http.StatusInternalServerError
		switch kind {
		case store.KindInvalidInput, store.KindPrecondition:
			status = http.StatusBadRequest
		case store.KindDuplicate:
			status = http.StatusConflict
		case store.KindNotFound:
			status = http.StatusNotFound
		case store.KindForbidden:
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func currentUserID(c *gin.Context) uint {
	userID, _ := c.Get("userID")
	return userID.(uint)
}
