package main

import (
	"fmt"
	"log"
	"net/http"

	"linkup/backend/internal/auth"
	"linkup/backend/internal/config"
	"linkup/backend/internal/database"
	"linkup/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Linkup API
// @version         1.0
// @description     This is the API for the Linkup service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)
	handler.Setup(database.DB)

	router := gin.Default()
	router.Use(cors.Default())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateMe)
			userRoutes.DELETE("/me", handler.DeleteMe)
			userRoutes.GET("/key/:key", handler.LookupContactKey)
		}

		// Friend request routes (protected)
		requestRoutes := apiV1.Group("/friend-requests")
		requestRoutes.Use(auth.AuthMiddleware())
		{
			requestRoutes.POST("", handler.SendFriendRequest)
			requestRoutes.GET("", handler.ListFriendRequests)
			requestRoutes.GET("/:id", handler.GetFriendRequest)
			requestRoutes.PUT("/:id", handler.UpdateFriendRequest)
			requestRoutes.DELETE("/:id", handler.DeleteFriendRequest)
		}

		// Friendship routes (protected)
		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.POST("", handler.CreateFriendship)
			friendRoutes.GET("", handler.ListFriendships)
			friendRoutes.GET("/:id", handler.GetFriendship)
			friendRoutes.PUT("/:id", handler.UpdateFriendship)
			friendRoutes.DELETE("/:id", handler.DeleteFriendship)
		}

		// Message routes (protected)
		messageRoutes := apiV1.Group("/messages")
		messageRoutes.Use(auth.AuthMiddleware())
		{
			messageRoutes.POST("", handler.SendMessage)
			messageRoutes.GET("/with/:id", handler.ListConversation)
			messageRoutes.PUT("/:id", handler.UpdateMessage)
			messageRoutes.DELETE("/:id", handler.DeleteMessage)
		}

		// Event stream (protected)
		apiV1.GET("/events", auth.AuthMiddleware(), handler.StreamEvents)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.GET("/users", handler.ListUsers)
			adminRoutes.POST("/users/:id/promote", handler.PromoteUser)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Println("Server is running on", addr)
	fmt.Println("Swagger UI is available at http://localhost" + addr + "/swagger/index.html")
	log.Fatal(router.Run(addr))
}
