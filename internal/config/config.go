package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	APIBaseURL         string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	ReadRetries    int
	ReadRetryDelay time.Duration
	APIRateLimit   float64
	APIRateBurst   int

	Slot    SlotConfig
	Pricing PricingConfig
	Kafka   KafkaConfig
	Upload  UploadConfig
	Log     LogConfig
}

type SlotConfig struct {
	// memory, file, redis, sqlite, postgres or mongo
	Driver string
	Key    string
	Path   string
	TTL    time.Duration

	RedisAddr     string
	RedisPassword string

	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	MongoURI    string
	MongoDBName string
}

type PricingConfig struct {
	HomeRegion       string
	HomeDeliveryFee  float64
	OtherDeliveryFee float64
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type UploadConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	PublicURL string
}

func (u UploadConfig) Enabled() bool { return u.Bucket != "" }

type LogConfig struct {
	Level  string
	Format string
	Output string
	File   string
}

// Load reads an optional .env file and then the environment. Unparsable
// numbers and durations fall back to their defaults with a warning.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		ReadRetries:    getInt("READ_RETRIES", 3),
		ReadRetryDelay: getDuration("READ_RETRY_DELAY", 2*time.Second),
		APIRateLimit:   getFloat("API_RATE_LIMIT", 20),
		APIRateBurst:   getInt("API_RATE_BURST", 40),

		Slot: SlotConfig{
			Driver:        getEnv("CART_SLOT_DRIVER", "file"),
			Key:           getEnv("CART_SLOT_KEY", "cart"),
			Path:          getEnv("CART_SLOT_PATH", "data/cart.json"),
			TTL:           getDuration("CART_SLOT_TTL", 0),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			SQLitePath:    getEnv("SQLITE_PATH", "data/storefront.db"),
			DBHost:        getEnv("DB_HOST", "localhost"),
			DBPort:        getEnv("DB_PORT", "5432"),
			DBUser:        getEnv("DB_USER", "storefront"),
			DBPassword:    getEnv("DB_PASSWORD", ""),
			DBName:        getEnv("DB_NAME", "storefront"),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDBName:   getEnv("MONGO_DB_NAME", "storefront"),
		},
		Pricing: PricingConfig{
			HomeRegion:       getEnv("HOME_REGION", "Dhaka"),
			HomeDeliveryFee:  getFloat("HOME_DELIVERY_FEE", 70),
			OtherDeliveryFee: getFloat("OTHER_DELIVERY_FEE", 120),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "storefront-events"),
		},
		Upload: UploadConfig{
			Bucket:    getEnv("UPLOAD_BUCKET", ""),
			Region:    getEnv("UPLOAD_REGION", "ap-south-1"),
			Endpoint:  getEnv("UPLOAD_ENDPOINT", ""),
			PublicURL: getEnv("UPLOAD_PUBLIC_URL", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
			File:   getEnv("LOG_FILE", "logs/storefront.log"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		slog.Warn("invalid number in environment, using default", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
