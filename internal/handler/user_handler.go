package handler

import (
	"errors"
	"net/http"
	"strconv"

	"linkup/backend/internal/models"
	"linkup/backend/internal/store"
	"linkup/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"testuser"`
	Email    string `json:"email" binding:"required" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=5" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateMeInput defines the self-service profile update payload.
type UpdateMeInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"testuser"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID         uint   `json:"id" example:"1"`
	Username   string `json:"username" example:"testuser"`
	Email      string `json:"email" example:"test@example.com"`
	ContactKey int64  `json:"contact_key" example:"123456789"`
	IsStaff    bool   `json:"is_staff"`
}

func newPublicUserResponse(user models.User) PublicUserResponse {
	return PublicUserResponse{ID: user.ID, Username: user.Username}
}

func newPrivateUserResponse(user models.User) PrivateUserResponse {
	return PrivateUserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		ContactKey: user.ContactKey,
		IsStaff:    user.IsStaff,
	}
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := identity.CreateUser(store.CreateUserParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with username/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := identity.Authenticate(input.Login, input.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	user, err := identity.GetUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPrivateUserResponse(*user))
}

// UpdateMe godoc
// @Summary      Update current user
// @Description  Updates the authenticated user's username, email or password.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateMeInput true "Fields to update"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/me [put]
func UpdateMe(c *gin.Context) {
	var input UpdateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := identity.UpdateUser(currentUserID(c), store.UpdateUserParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPrivateUserResponse(*user))
}

// DeleteMe godoc
// @Summary      Delete current user
// @Description  Deletes the authenticated user's account along with their requests, friendships and messages.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [delete]
func DeleteMe(c *gin.Context) {
	if err := identity.DeleteUser(currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LookupContactKey godoc
// @Summary      Look up a user by contact key
// @Description  Resolves a shared contact key to the owning user's public profile.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      int  true  "Contact key"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/key/{key} [get]
func LookupContactKey(c *gin.Context) {
	key, err := strconv.ParseInt(c.Param("key"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact key"})
		return
	}

	user, err := identity.LookupByContactKey(key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPublicUserResponse(*user))
}

// endregion

// region --- Admin Handlers ---

// ListUsers godoc
// @Summary      List users
// @Description  Lists all accounts with pagination. Staff only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200  {object}  PaginatedResponse[PrivateUserResponse]
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users [get]
func ListUsers(c *gin.Context) {
	page, limit := parsePageLimit(c)

	users, total, err := identity.ListUsers(page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]PrivateUserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, newPrivateUserResponse(user))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(responses, total, page, limit))
}

// PromoteUser godoc
// @Summary      Promote a user
// @Description  Grants staff and superuser flags to a user. Staff only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id}/promote [post]
func PromoteUser(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := identity.GetUser(uint(targetID))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := identity.PromoteToSuperuser(user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPrivateUserResponse(*user))
}

// endregion
