package main

import (
	"context"
	"log"
	"strings"
	"time"

	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/kafka"
	"checkout-service/logger"
	"checkout-service/pkg/aws"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"
	"checkout-service/vnpay"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Close()

	orderRepo := repository.NewMongoOrderRepository(database.DB)
	userRepo := repository.NewMongoUserRepository(database.DB)
	courseRepo := repository.NewMongoCourseRepository(database.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		cancel()
		logger.Log.Fatal("Failed to create order indexes", zap.Error(err))
	}
	cancel()

	redisClient := database.NewRedisClient(cfg.RedisURL)
	cartRepo := database.NewCartRepository(redisClient)

	gateway := vnpay.NewGateway(cfg.VNPayTmnCode, cfg.VNPayHashSecret, cfg.VNPayURL, cfg.VNPayReturnURL)

	var events services.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.PaymentEventsTopic, logger.Log)
		defer producer.Close()
		events = producer
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, payment events disabled")
	}

	var snsPublisher services.SNSPublisher
	if cfg.PaymentSNSTopicARN != "" {
		awsCfg, err := aws.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		snsPublisher = aws.NewSNSClient(awsCfg)
	}

	checkoutSvc := services.NewCheckoutService(orderRepo, courseRepo, gateway, logger.Log, cfg.PendingOrderMaxAge)
	paymentSvc := services.NewPaymentService(orderRepo, userRepo, cfg.VNPayHashSecret, events, snsPublisher, cfg.PaymentSNSTopicARN, logger.Log)
	orderSvc := services.NewOrderService(orderRepo, userRepo, events, logger.Log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterRoutes(r,
		&controllers.CheckoutController{Checkout: checkoutSvc, Carts: cartRepo, Logger: logger.Log},
		&controllers.PaymentController{Payments: paymentSvc, FrontendURL: cfg.FrontendURL, Logger: logger.Log},
		&controllers.OrderController{Orders: orderSvc},
	)

	logger.Log.Info("Checkout service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}
