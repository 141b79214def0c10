package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trainertrack/consumer"
	"trainertrack/handlers"
	"trainertrack/middleware"
	"trainertrack/models"
	"trainertrack/monitoring"
	"trainertrack/utils"
)

func main() {
	logger := log.New(os.Stdout, "TRAINERTRACK: ", log.LstdFlags|log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		logger.Println("No .env file found")
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := utils.InitSentry(dsn); err != nil {
			logger.Printf("Sentry disabled: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	monitoring.Init()

	repo, err := models.NewPostgresRepository()
	if err != nil {
		logger.Fatalf("Failed to initialize repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Printf("Error closing repository: %v", err)
		}
	}()

	// Redis comes up slower than this service in compose setups, so retry.
	var redisClient utils.RedisClient
	maxRetries := 5
	retryDelay := 3 * time.Second
	for i := 0; i < maxRetries; i++ {
		redisClient, err = utils.NewRedisClient()
		if err == nil {
			break
		}
		logger.Printf("Attempt %d: Failed to connect to Redis: %v", i+1, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if redisClient == nil {
		logger.Printf("Running without Redis cache after %d attempts", maxRetries)
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Printf("Error closing Redis connection: %v", err)
			}
		}()
	}

	kafkaProducer, err := utils.NewKafkaProducer()
	if err != nil {
		logger.Printf("Running without Kafka producer: %v", err)
		kafkaProducer = nil
	} else {
		defer kafkaProducer.Close()
	}

	esClient, err := utils.NewElasticsearchClient()
	if err != nil {
		logger.Printf("Running without Elasticsearch: %v", err)
		esClient = nil
	}

	if kafkaProducer != nil {
		trackingConsumer := consumer.NewTrackingConsumer(redisClient, esClient)
		consumerCtx, cancelConsumer := context.WithCancel(context.Background())
		defer cancelConsumer()
		trackingConsumer.Start(consumerCtx)
		defer trackingConsumer.Stop()
	}

	clientHandler := handlers.NewClientHandler(repo, kafkaProducer, redisClient)
	measurementHandler := handlers.NewMeasurementHandler(repo, kafkaProducer)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.PrometheusMetrics())
	router.Use(middleware.ErrorHandler())

	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/clients", clientHandler.ListClients)
		api.POST("/clients", clientHandler.CreateClient)
		api.GET("/clients/:id", clientHandler.GetClient)
		api.PUT("/clients/:id", clientHandler.UpdateClient)
		api.DELETE("/clients/:id", clientHandler.DeleteClient)

		api.GET("/clients/:id/measurements", measurementHandler.ListMeasurements)
		api.POST("/clients/:id/measurements", measurementHandler.CreateMeasurement)
		api.GET("/clients/:id/measurements/form", measurementHandler.NewForm)
		api.GET("/clients/:id/trends", measurementHandler.Trends)

		api.GET("/measurements/:id", measurementHandler.GetMeasurement)
		api.PUT("/measurements/:id", measurementHandler.UpdateMeasurement)
		api.DELETE("/measurements/:id", measurementHandler.DeleteMeasurement)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Printf("Server is running on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
