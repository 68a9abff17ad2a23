package myconfig

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL = "http://localhost:3000"
)

type Config struct {
	Port                 string
	OrdersEndpoint       string
	PaymentsEndpoint     string
	AuthEndpoint         string
	MercadoPagoPublicKey string
	StripeAPIKey         string
	MollieAPIKey         string
	AdyenAPIKey          string
	AdyenMerchantAccount string
	AdyenEnvironment     string
	AdyenClientKey       string
	AdyenWebhookUsername string
	AdyenWebhookPassword string
	Currency             string
	GoogleCloudProject   string
	RedisAddr            string
	KafkaBrokers         []string
}

// Load reads the configuration from the environment, after merging in a
// .env file when one is present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                 getenv("PORT", "8080"),
		OrdersEndpoint:       getenv("ORDERS_ENDPOINT", "https://jsonplaceholder.typicode.com/posts"),
		PaymentsEndpoint:     getenv("PAYMENTS_ENDPOINT", defaultAPIBaseURL),
		AuthEndpoint:         getenv("AUTH_ENDPOINT", defaultAPIBaseURL+"/auth"),
		MercadoPagoPublicKey: os.Getenv("MP_PUBLIC_KEY"),
		StripeAPIKey:         os.Getenv("STRIPE_API_KEY"),
		MollieAPIKey:         os.Getenv("MOLLIE_API_KEY"),
		AdyenAPIKey:          os.Getenv("ADYEN_API_KEY"),
		AdyenMerchantAccount: os.Getenv("ADYEN_MERCHANT_ACCOUNT"),
		AdyenEnvironment:     getenv("ADYEN_ENVIRONMENT", "test"),
		AdyenClientKey:       os.Getenv("ADYEN_CLIENT_KEY"),
		AdyenWebhookUsername: os.Getenv("ADYEN_WEBHOOK_USERNAME"),
		AdyenWebhookPassword: os.Getenv("ADYEN_WEBHOOK_PASSWORD"),
		Currency:             getenv("CURRENCY", "CLP"),
		GoogleCloudProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		KafkaBrokers:         splitCSV(os.Getenv("KAFKA_BROKERS")),
	}
}

func getenv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
