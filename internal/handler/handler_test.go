package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkup/backend/internal/auth"
	"linkup/backend/internal/config"
	"linkup/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRouter stands up the API over a private in-memory database and
// returns the router plus the db for direct assertions.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.FriendRequest{}, &models.Friendship{}, &models.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	Setup(db)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/register", RegisterUser)
		apiV1.POST("/auth/login", LoginUser)

		protected := apiV1.Group("")
		protected.Use(auth.AuthMiddleware())
		{
			protected.GET("/users/me", GetMe)
			protected.GET("/users/key/:key", LookupContactKey)
			protected.POST("/friend-requests", SendFriendRequest)
			protected.PUT("/friend-requests/:id", UpdateFriendRequest)
			protected.POST("/friends", CreateFriendship)
			protected.POST("/messages", SendMessage)
			protected.GET("/messages/with/:id", ListConversation)
		}
	}
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *gin.Engine, name string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": name,
		"email":    name + "@testdomain.com",
		"password": "password_" + name,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", name, rec.Code, rec.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return out["token"]
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAndLogin(t, router, "alice")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"login":    "alice",
		"password": "password_alice",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"login":    "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d, want 401", rec.Code)
	}
}

// Follows the whole lifecycle over HTTP and checks the status-code mapping
// of each failure on the way.
func TestFriendRequestToMessageFlow(t *testing.T) {
	router, db := newTestRouter(t)

	aliceToken := registerAndLogin(t, router, "alice")
	bobToken := registerAndLogin(t, router, "bob")

	var alice, bob models.User
	if err := db.Where("username = ?", "alice").First(&alice).Error; err != nil {
		t.Fatalf("load alice: %v", err)
	}
	if err := db.Where("username = ?", "bob").First(&bob).Error; err != nil {
		t.Fatalf("load bob: %v", err)
	}

	// Resolve bob by contact key.
	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/users/key/%d", bob.ContactKey), aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("key lookup: status %d", rec.Code)
	}

	// Messaging before any friendship is refused.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/messages", aliceToken, gin.H{
		"to_user_id": bob.ID, "content": "too soon",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("premature message: status %d, want 400", rec.Code)
	}

	// Send the request via contact key.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friend-requests", aliceToken, gin.H{
		"contact_key": bob.ContactKey,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send request: status %d body %s", rec.Code, rec.Body.String())
	}
	var request FriendRequestResponse
	json.Unmarshal(rec.Body.Bytes(), &request)

	// Mirrored request collides.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friend-requests", bobToken, gin.H{
		"contact_key": alice.ContactKey,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("mirrored request: status %d, want 409", rec.Code)
	}

	// The sender cannot accept it.
	acceptPath := fmt.Sprintf("/api/v1/friend-requests/%d", request.ID)
	rec = doJSON(t, router, http.MethodPut, acceptPath, aliceToken, gin.H{"is_accepted": true})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("sender accept: status %d, want 403", rec.Code)
	}

	// The recipient accepts and records the friendship.
	rec = doJSON(t, router, http.MethodPut, acceptPath, bobToken, gin.H{"is_accepted": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/friends", bobToken, gin.H{"user_id": alice.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create friendship: status %d body %s", rec.Code, rec.Body.String())
	}

	// Now the message goes through and shows up in the conversation.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/messages", aliceToken, gin.H{
		"to_user_id": bob.ID, "content": "hello bob",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send message: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/messages/with/%d", alice.ID), bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list conversation: status %d body %s", rec.Code, rec.Body.String())
	}
	var conversation PaginatedResponse[MessageResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &conversation); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if len(conversation.Data) != 1 || conversation.Data[0].Content != "hello bob" {
		t.Fatalf("conversation = %+v", conversation.Data)
	}
}

func TestContactKeyLookupNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router, "alice")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/key/123456788", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
