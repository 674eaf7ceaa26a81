package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort     string
	Development bool

	JWTKey []byte
	JWTExp time.Duration

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromName     string
	FromEmail    string

	// Auth policy. The lockout threshold is deliberately a parameter,
	// not part of the data model.
	RequireVerification bool
	MaxLoginAttempts    int
	LockDuration        time.Duration
	VerifyTokenTTL      time.Duration
	ResetTokenTTL       time.Duration

	RazorpayKeySecret string
}

// Load reads .env plus the environment and returns the config the rest of
// the process is wired with. Nothing else reads the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		APIPort:     getEnv("API_PORT", "8080"),
		Development: getEnvAsBool("DEVELOPMENT", false),

		JWTKey: []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp: time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "codeprep_db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),
		FromName:     getEnv("FROM_NAME", "CodePrep"),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@codeprep.local"),

		RequireVerification: getEnvAsBool("AUTH_REQUIRE_VERIFICATION", true),
		MaxLoginAttempts:    getEnvAsInt("AUTH_MAX_LOGIN_ATTEMPTS", 5),
		LockDuration:        time.Duration(getEnvAsInt("AUTH_LOCK_MINUTES", 15)) * time.Minute,
		VerifyTokenTTL:      time.Duration(getEnvAsInt("AUTH_VERIFY_TOKEN_MINUTES", 10)) * time.Minute,
		ResetTokenTTL:       time.Duration(getEnvAsInt("AUTH_RESET_TOKEN_MINUTES", 10)) * time.Minute,

		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
