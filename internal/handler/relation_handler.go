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

// SendFriendRequestInput defines the payload for sending a friend request.
// The recipient is addressed by their shared contact key, never by ID.
type SendFriendRequestInput struct {
	ContactKey int64 `json:"contact_key" binding:"required" example:"123456789"`
}

// UpdateFriendRequestInput defines the payload for mutating a request's flags.
type UpdateFriendRequestInput struct {
	IsNew      *bool `json:"is_new"`
	IsAccepted *bool `json:"is_accepted"`
}

// FriendRequestResponse defines the structure for a friend request.
type FriendRequestResponse struct {
	ID         uint      `json:"id"`
	FromUserID uint      `json:"from_user_id"`
	ToUserID   uint      `json:"to_user_id"`
	IsNew      bool      `json:"is_new"`
	IsAccepted bool      `json:"is_accepted"`
	CreatedOn  time.Time `json:"created_on"`
}

// CreateFriendshipInput defines the payload for creating a friendship. The
// friend_of side is always the authenticated user.
type CreateFriendshipInput struct {
	UserID uint `json:"user_id" binding:"required" example:"2"`
}

// UpdateFriendshipInput defines the payload for the owner-mutable friendship
// fields. An empty nickname clears it.
type UpdateFriendshipInput struct {
	Nickname  *string `json:"nickname"`
	IsBlocked *bool   `json:"is_blocked"`
}

// FriendshipResponse defines the structure for a friendship row.
type FriendshipResponse struct {
	ID         uint               `json:"id"`
	User       PublicUserResponse `json:"user"`
	FriendOfID uint               `json:"friend_of_id"`
	Nickname   *string            `json:"nickname"`
	IsBlocked  bool               `json:"is_blocked"`
	StartDate  time.Time          `json:"start_date"`
}

func newFriendRequestResponse(request models.FriendRequest) FriendRequestResponse {
	return FriendRequestResponse{
		ID:         request.ID,
		FromUserID: request.FromUserID,
		ToUserID:   request.ToUserID,
		IsNew:      request.IsNew,
		IsAccepted: request.IsAccepted,
		CreatedOn:  request.CreatedOn,
	}
}

func newFriendshipResponse(friendship models.Friendship) FriendshipResponse {
	return FriendshipResponse{
		ID:         friendship.ID,
		User:       newPublicUserResponse(friendship.User),
		FriendOfID: friendship.FriendOfID,
		Nickname:   friendship.Nickname,
		IsBlocked:  friendship.IsBlocked,
		StartDate:  friendship.StartDate,
	}
}

// endregion

// region --- Friend Request Handlers ---

// SendFriendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to the user owning the given contact key.
// @Tags         friend-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendFriendRequestInput true "Recipient's contact key"
// @Success      201  {object}  FriendRequestResponse
// @Failure      400  {object}  ErrorResponse "Invalid input or self request"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No user with that contact key"
// @Failure      409  {object}  ErrorResponse "Request already exists in either direction"
// @Router       /friend-requests [post]
func SendFriendRequest(c *gin.Context) {
	var input SendFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipient, err := identity.LookupByContactKey(input.ContactKey)
	if err != nil {
		respondError(c, err)
		return
	}

	request, err := relationships.SendRequest(currentUserID(c), recipient.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	hub.GlobalHub.Notify(recipient.ID, hub.Event{
		Type:    "friend_request.created",
		Payload: newFriendRequestResponse(*request),
	})

	c.JSON(http.StatusCreated, newFriendRequestResponse(*request))
}

// ListFriendRequests godoc
// @Summary      List incoming friend requests
// @Description  Lists the friend requests addressed to the authenticated user, newest first.
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200  {object}  PaginatedResponse[FriendRequestResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /friend-requests [get]
func ListFriendRequests(c *gin.Context) {
	page, limit := parsePageLimit(c)

	requests, total, err := relationships.ListIncomingRequests(currentUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]FriendRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, newFriendRequestResponse(request))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(responses, total, page, limit))
}

// GetFriendRequest godoc
// @Summary      Get a friend request
// @Description  Retrieves one friend request the authenticated user participates in.
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend request ID"
// @Success      200  {object}  FriendRequestResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friend-requests/{id} [get]
func GetFriendRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend request ID"})
		return
	}

	request, err := relationships.GetRequest(currentUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFriendRequestResponse(*request))
}

// UpdateFriendRequest godoc
// @Summary      Update a friend request
// @Description  Accepts a request or marks it read. Only the recipient may do this.
// @Tags         friend-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "Friend request ID"
// @Param        input body      UpdateFriendRequestInput true  "Flags to update"
// @Success      200  {object}  FriendRequestResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friend-requests/{id} [put]
func UpdateFriendRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend request ID"})
		return
	}

	var input UpdateFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := relationships.UpdateRequest(currentUserID(c), uint(id), store.UpdateRequestParams{
		IsNew:      input.IsNew,
		IsAccepted: input.IsAccepted,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFriendRequestResponse(*request))
}

// DeleteFriendRequest godoc
// @Summary      Delete a friend request
// @Description  Removes a request. Either participant may do this; friendships created from it survive.
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend request ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friend-requests/{id} [delete]
func DeleteFriendRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend request ID"})
		return
	}

	if err := relationships.DeleteRequest(currentUserID(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// endregion

// region --- Friendship Handlers ---

// CreateFriendship godoc
// @Summary      Create a friendship
// @Description  Records the given user as a friend of the authenticated user. Requires an accepted friend request between the pair.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateFriendshipInput true "The user to befriend"
// @Success      201  {object}  FriendshipResponse
// @Failure      400  {object}  ErrorResponse "No request, or request not accepted"
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /friends [post]
func CreateFriendship(c *gin.Context) {
	var input CreateFriendshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	friendship, err := relationships.CreateFriendship(input.UserID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if user, err := identity.GetUser(friendship.UserID); err == nil {
		friendship.User = *user
	}
	c.JSON(http.StatusCreated, newFriendshipResponse(*friendship))
}

// ListFriendships godoc
// @Summary      List friendships
// @Description  Lists the friendship rows owned by the authenticated user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200  {object}  PaginatedResponse[FriendshipResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /friends [get]
func ListFriendships(c *gin.Context) {
	page, limit := parsePageLimit(c)

	friendships, total, err := relationships.ListFriendships(currentUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]FriendshipResponse, 0, len(friendships))
	for _, friendship := range friendships {
		responses = append(responses, newFriendshipResponse(friendship))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(responses, total, page, limit))
}

// GetFriendship godoc
// @Summary      Get a friendship
// @Description  Retrieves one friendship row the authenticated user participates in.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friendship ID"
// @Success      200  {object}  FriendshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{id} [get]
func GetFriendship(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friendship ID"})
		return
	}

	friendship, err := relationships.GetFriendship(currentUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if user, err := identity.GetUser(friendship.UserID); err == nil {
		friendship.User = *user
	}
	c.JSON(http.StatusOK, newFriendshipResponse(*friendship))
}

// UpdateFriendship godoc
// @Summary      Update a friendship
// @Description  Sets the private nickname or the blocked flag. Only the owner (friend_of side) may do this.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Friendship ID"
// @Param        input body      UpdateFriendshipInput true  "Fields to update"
// @Success      200  {object}  FriendshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{id} [put]
func UpdateFriendship(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friendship ID"})
		return
	}

	var input UpdateFriendshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := store.UpdateFriendshipParams{IsBlocked: input.IsBlocked}
	if input.Nickname != nil {
		nickname := input.Nickname
		if *nickname == "" {
			nickname = nil // empty string clears the nickname
		}
		params.Nickname = &nickname
	}

	friendship, err := relationships.UpdateFriendship(currentUserID(c), uint(id), params)
	if err != nil {
		respondError(c, err)
		return
	}
	if user, err := identity.GetUser(friendship.UserID); err == nil {
		friendship.User = *user
	}
	c.JSON(http.StatusOK, newFriendshipResponse(*friendship))
}

// DeleteFriendship godoc
// @Summary      Delete a friendship
// @Description  Removes a friendship row. Either side may do this.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friendship ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{id} [delete]
func DeleteFriendship(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friendship ID"})
		return
	}

	if err := relationships.DeleteFriendship(currentUserID(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// endregion
