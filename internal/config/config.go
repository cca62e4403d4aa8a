package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST         string
	DbPORT         string
	DbUSER         string
	DbPASSWORD     string
	DbNAME         string
	DbSSLMODE      string
	MigrationsPath string
}

type MinIO struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketName    string
	UseSSL        bool
	Region        string
	PublicURL     string
	UploadTimeout time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	ListTTL  time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Tracing struct {
	Endpoint    string
	ServiceName string
	Environment string
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	ServerPort      int
	DB              DB
	MinIO           MinIO
	Redis           Redis
	Kafka           Kafka
	Tracing         Tracing
	Log             Log
	JWTSecretKey    string
	TokenDuration   time.Duration
	MaxUploadSize   int64
	ShutdownTimeout time.Duration
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadDB() DB {
	return DB{
		DbHOST:         getEnv("DB_HOST", "localhost"),
		DbPORT:         getEnv("DB_PORT", "5432"),
		DbUSER:         getEnv("DB_USER", "postgres"),
		DbPASSWORD:     getEnv("DB_PASSWORD", "password"),
		DbNAME:         getEnv("DB_NAME", "voxablog"),
		DbSSLMODE:      getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
	}
}

func LoadMinIO() MinIO {
	useSSL := getEnvBool("MINIO_USE_SSL", false)
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")

	scheme := "http://"
	if useSSL {
		scheme = "https://"
	}

	return MinIO{
		Endpoint:      endpoint,
		AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName:    getEnv("MINIO_BUCKET_NAME", "voxablogs"),
		UseSSL:        useSSL,
		Region:        getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:     strings.TrimSuffix(getEnv("MINIO_PUBLIC_URL", scheme+endpoint), "/"),
		UploadTimeout: getEnvDuration("MEDIA_UPLOAD_TIMEOUT", 30*time.Second),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
		ListTTL:  getEnvDuration("REDIS_LIST_TTL", time.Minute),
	}
}

func LoadKafka() Kafka {
	return Kafka{
		Brokers: getEnvList("KAFKA_BROKERS"),
		Topic:   getEnv("KAFKA_TOPIC", "blog-events"),
	}
}

func LoadTracing() Tracing {
	return Tracing{
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "voxablog-api"),
		Environment: getEnv("APP_ENV", "local"),
	}
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	return &Config{
		ServerPort: getEnvAsInt("SERVER_PORT", 5000),
		DB:         LoadDB(),
		MinIO:      LoadMinIO(),
		Redis:      LoadRedis(),
		Kafka:      LoadKafka(),
		Tracing:    LoadTracing(),
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
		TokenDuration:   getEnvDuration("TOKEN_DURATION", time.Hour),
		MaxUploadSize:   parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}
