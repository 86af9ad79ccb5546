package config

import (
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config for the content service.
type Config struct {
	Port     string `env:"PORT" envDefault:":8080"`
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50051"`
	TCPAddr  string `env:"TCP_ADDR" envDefault:":9090"`
	UDPAddr  string `env:"UDP_ADDR" envDefault:":7070"`

	StoreBackend     string `env:"STORE_BACKEND" envDefault:"sql"`
	DBDriver         string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBPath           string `env:"DB_PATH" envDefault:"./data/portfolio.db"`
	SeedPath         string `env:"SEED_PATH" envDefault:"./data/seed.json"`
	FirestoreProject string `env:"FIRESTORE_PROJECT"`
	FirestoreCreds   string `env:"FIRESTORE_CREDENTIALS"`

	AppID         string `env:"APP_ID" envDefault:"default-app-id"`
	JWTSecret     string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"dodohardcore43@gmail.com"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	GroqAPIKey   string `env:"GROQ_API_KEY"`
	ChatEndpoint string `env:"CHAT_ENDPOINT" envDefault:"https://api.groq.com/openai/v1/chat/completions"`
	ChatModel    string `env:"CHAT_MODEL" envDefault:"llama-3.3-70b-versatile"`

	FrontendURLs []string `env:"FRONTEND_URLS" envSeparator:","`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Client is the configuration of the terminal site client.
type Client struct {
	GRPCAddr  string `env:"SITE_GRPC_ADDR" envDefault:"127.0.0.1:50051"`
	HTTPURL   string `env:"SITE_HTTP_URL" envDefault:"http://127.0.0.1:8080"`
	PrefsPath string `env:"SITE_PREFS_PATH"`
	LogPath   string `env:"SITE_LOG_PATH"`
	Lang      string `env:"SITE_LANG" envDefault:"id"`

	AppID      string `env:"APP_ID" envDefault:"default-app-id"`
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"dodohardcore43@gmail.com"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

var unsafeAppID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeAppID makes an application id safe to use as a storage path segment.
func SanitizeAppID(id string) string {
	return unsafeAppID.ReplaceAllString(id, "_")
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}
}

func LoadConfig() (*Config, error) {
	loadDotEnv()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.AppID = SanitizeAppID(cfg.AppID)
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	return cfg, nil
}

func LoadClient() (*Client, error) {
	loadDotEnv()
	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.AppID = SanitizeAppID(cfg.AppID)
	return cfg, nil
}

// SetupLogging applies the configured level to the standard logrus logger.
func SetupLogging(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
