package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port        string
	Env         string
	MongoURI    string
	MongoDB     string
	RedisURL    string
	FrontendURL string

	VNPayTmnCode    string
	VNPayHashSecret string
	VNPayURL        string
	VNPayReturnURL  string

	KafkaBrokers       string
	PaymentEventsTopic string
	PaymentSNSTopicARN string // optional, best-effort fan-out

	PendingOrderMaxAge time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8090"),
		Env:         getEnv("APP_ENV", "development"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "coursehub"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		VNPayTmnCode:    os.Getenv("VNPAY_TMN_CODE"),
		VNPayHashSecret: os.Getenv("VNPAY_HASH_SECRET"),
		VNPayURL:        getEnv("VNPAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		VNPayReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8090/payment/vnpay/callback"),

		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		PaymentEventsTopic: getEnv("PAYMENT_EVENTS_TOPIC", "payment.events"),
		PaymentSNSTopicARN: os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
	}

	maxAge := getEnv("PENDING_ORDER_MAX_AGE", "24h")
	d, err := time.ParseDuration(maxAge)
	if err != nil {
		return nil, fmt.Errorf("invalid PENDING_ORDER_MAX_AGE %q: %w", maxAge, err)
	}
	cfg.PendingOrderMaxAge = d

	if cfg.VNPayTmnCode == "" || cfg.VNPayHashSecret == "" {
		return nil, fmt.Errorf("missing required environment variables VNPAY_TMN_CODE / VNPAY_HASH_SECRET")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
