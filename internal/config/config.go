package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string
	Title     string

	QuizDir      string
	PassingScore int

	DBDriver string
	DBDSN    string

	BlobDriver     string // fs|minio
	BlobBasePath   string // for fs
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	SessionDriver string // memory|redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	AuthSecret   string
	CookieSecure bool

	AdminUser     string
	AdminPassHash string // bcrypt

	MailServer     string
	MailPort       int
	MailUsername   string
	MailPassword   string
	ReviewerEmails []string

	RabbitURI      string
	RabbitExchange string

	CORSOrigins []string
}

// Load reads a .env file when present, then the environment.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:      mode,
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: os.Getenv("PUBLIC_URL"),
		Title:     envOr("TITLE", "Quiz"),

		QuizDir:      envOr("QUIZ_DIR", "./quizzes"),
		PassingScore: envInt("QUIZ_PASSING_SCORE", 80),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobDriver:     envOr("BLOB_DRIVER", "fs"),
		BlobBasePath:   envOr("BLOB_BASE_PATH", "./data"),
		MinioEndpoint:  envOr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "quiz-submissions"),
		MinioRegion:    envOr("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", mode == ModeOnline),

		SessionDriver: envOr("SESSION_DRIVER", "memory"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		SessionTTL:    time.Duration(envInt("SESSION_TTL_HOURS", 8)) * time.Hour,

		AuthSecret:   envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CookieSecure: envBool("COOKIE_SECURE", mode == ModeOnline),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		MailServer:     envOr("MAIL_SERVER", "mail.example.com"),
		MailPort:       envInt("MAIL_PORT", 25),
		MailUsername:   os.Getenv("MAIL_USERNAME"),
		MailPassword:   os.Getenv("MAIL_PASSWORD"),
		ReviewerEmails: csvOr("REVIEWER_EMAILS", "admin@example.com"),

		RabbitURI:      os.Getenv("RABBITMQ_URI"),
		RabbitExchange: envOr("RABBITMQ_EXCHANGE", "quiz.events"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:8080"),
	}
}

func (c Config) Validate() error {
	if c.PassingScore < 0 || c.PassingScore > 100 {
		return fmt.Errorf("QUIZ_PASSING_SCORE must be within 0..100, got %d", c.PassingScore)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.BlobDriver {
	case "fs", "minio":
	default:
		return fmt.Errorf("unsupported BLOB_DRIVER %q", c.BlobDriver)
	}
	switch c.SessionDriver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_DRIVER %q", c.SessionDriver)
	}
	if c.Mode == ModeOnline && c.AuthSecret == "supersecret-dev-key" {
		return fmt.Errorf("AUTH_HMAC_SECRET must be set in online mode")
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
