package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

func String(key, def string) string {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return def
	}
	return v
}

func Int(key string, def int) int {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Bool(key string, def bool) bool {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Settings is the typed view of the environment read once at startup.
type Settings struct {
	Port   string
	AppEnv string

	JWTSecret string
	JWTTTL    time.Duration

	StorageDriver string
	DatabaseURL   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	VerifyPasswords  bool
	SessionRetention time.Duration
	CloudinaryURL    string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string
}

func Load() Settings {
	return Settings{
		Port:   String("PORT", "8080"),
		AppEnv: String("APP_ENV", "development"),

		JWTSecret: Config("JWT_SECRET"),
		JWTTTL:    Duration("JWT_TTL", 72*time.Hour),

		StorageDriver: strings.ToLower(String("STORAGE_DRIVER", "sqlite")),
		DatabaseURL:   Config("DATABASE_URL"),
		SQLitePath:    String("SQLITE_PATH", "grading_portal.db"),
		RedisAddr:     String("REDIS_ADDR", "localhost:6379"),
		RedisPassword: Config("REDIS_PASSWORD"),
		RedisDB:       Int("REDIS_DB", 0),
		RedisPrefix:   String("REDIS_PREFIX", "portal:"),

		VerifyPasswords:  Bool("AUTH_VERIFY_PASSWORDS", false),
		SessionRetention: Duration("SESSION_RETENTION", 10*time.Minute),
		CloudinaryURL:    Config("CLOUDINARY_URL"),

		BrevoAPIKey:     Config("BREVO_API_KEY"),
		EmailSender:     Config("EMAIL_SENDER"),
		EmailSenderName: String("EMAIL_SENDER_NAME", "Al-Quds Grading Portal"),
	}
}
