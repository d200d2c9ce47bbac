package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	APIPrefix      string
	PublicBaseURL  string
	RequestTimeout time.Duration
	OTelEnabled    bool

	DBDriver     string
	DatabaseDSN  string
	DBMaxOpen    int
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration
	MediaBackend string
	MediaDir     string
	MongoURI     string
	MongoDB      string

	AuthBaseURL string
	AuthTimeout time.Duration
	AuthRPS     int

	DefaultPageSize   int
	MaxPageSize       int
	MaxUploadBytes    int
	AllowedImageTypes []string

	HostSyncWorkers int
	HostSyncMaxAge  time.Duration
	HostSyncLimit   int
}

// Load reads the environment, after merging a local .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8001"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		APIPrefix:      "/" + strings.Trim(env("API_PREFIX", "/api/v1"), "/"),
		PublicBaseURL:  strings.TrimRight(env("PUBLIC_BASE_URL", "http://localhost:8001"), "/"),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		OTelEnabled:    atob("OTEL_ENABLED", false),

		DBDriver:     strings.ToLower(env("DB_DRIVER", "mysql")),
		DatabaseDSN:  env("DATABASE_DSN", "root:root@tcp(localhost:3306)/listings?parseTime=true&charset=utf8mb4&loc=UTC"),
		DBMaxOpen:    atoi("DB_MAX_OPEN_CONNS", 20),
		RedisAddr:    env("REDIS_ADDR", ""),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		MediaBackend: strings.ToLower(env("MEDIA_BACKEND", "local")),
		MediaDir:     env("MEDIA_DIR", "./media"),
		MongoURI:     env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      env("MONGO_DB", "listings"),

		AuthBaseURL: env("AUTH_SERVICE_URL", "http://localhost:8000"),
		AuthTimeout: time.Duration(atoi("AUTH_TIMEOUT_SECONDS", 5)) * time.Second,
		AuthRPS:     atoi("AUTH_RPS", 10),

		DefaultPageSize:   atoi("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:       atoi("MAX_PAGE_SIZE", 100),
		MaxUploadBytes:    atoi("MAX_UPLOAD_BYTES", 5<<20),
		AllowedImageTypes: list("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/webp,image/gif"),

		HostSyncWorkers: atoi("HOSTSYNC_WORKERS", 4),
		HostSyncMaxAge:  time.Duration(atoi("HOSTSYNC_MAX_AGE_HOURS", 24)) * time.Hour,
		HostSyncLimit:   atoi("HOSTSYNC_LIMIT", 500),
	}
	if c.MaxPageSize <= 0 || c.MaxPageSize > 100 {
		c.MaxPageSize = 100
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = 20
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty; catalog cache disabled")
	}
	return c
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
	}
	return def
}

func atob(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func list(k, def string) []string {
	var out []string
	for _, p := range strings.Split(env(k, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
