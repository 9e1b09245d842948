package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/lecturecast/signaling/config"
	"github.com/lecturecast/signaling/internal/handlers"
	"github.com/lecturecast/signaling/internal/hub"
	"github.com/lecturecast/signaling/internal/negotiation"
	"github.com/lecturecast/signaling/internal/presence"
	"github.com/lecturecast/signaling/internal/rtc"
	"github.com/lecturecast/signaling/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Optional Redis presence mirror
	var roomPresence hub.Presence = hub.NopPresence{}
	if cfg.Redis.Enabled() {
		mirror, err := presence.Connect(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer mirror.Close()
		roomPresence = mirror

		log.Println("Redis connection established")
	}

	// Media engine with the static STUN list
	engine, err := rtc.NewPionEngine(cfg.STUNServers)
	if err != nil {
		log.Fatalf("Failed to initialize media engine: %v", err)
	}

	rooms := store.New()

	rtHub := hub.New(rooms, roomPresence)
	go rtHub.Run()

	svc := negotiation.New(rooms, engine, rtHub)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Global CORS middleware (runs before routing)
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Negotiation endpoints
	router.POST("/broadcast", handlers.Broadcast(svc))
	router.POST("/consumer", handlers.Consumer(svc))

	// Room info (public)
	router.GET("/rooms/:roomId", handlers.GetRoom(rooms))

	// Realtime channel
	router.GET("/ws", handlers.HandleRealtime(rtHub))

	// Start server
	log.Printf("Starting signaling server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
