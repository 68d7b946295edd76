package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultEnv         = "dev"
	defaultUploadDir   = "./uploads"
	defaultMaxUploadMB = 100
	defaultTGUsername  = "Shiftprint"
	defaultWhatsApp    = "https://wa.me/37360972200"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// ErrUnsupportedConfigFormat is returned for config files that are not TOML, YAML or JSON.
var ErrUnsupportedConfigFormat = errors.New("unsupported config file format")

// Config holds application configuration. Values come from an optional config
// file and are overridden by environment variables.
type Config struct {
	Env            string   `toml:"env" yaml:"env" json:"env"`
	Port           string   `toml:"port" yaml:"port" json:"port"`
	DBPath         string   `toml:"db_path" yaml:"db_path" json:"db_path"`
	AdminEmails    []string `toml:"admin_emails" yaml:"admin_emails" json:"admin_emails"`
	AdminPassword  string   `toml:"admin_password" yaml:"admin_password" json:"admin_password"`
	SessionSecret  string   `toml:"session_secret" yaml:"session_secret" json:"session_secret"`
	MarkupMode     string   `toml:"markup_mode" yaml:"markup_mode" json:"markup_mode"`
	MaxUploadMB    int      `toml:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	UploadDir      string   `toml:"upload_dir" yaml:"upload_dir" json:"upload_dir"`
	StorageBackend string   `toml:"storage_backend" yaml:"storage_backend" json:"storage_backend"`
	S3Bucket       string   `toml:"s3_bucket" yaml:"s3_bucket" json:"s3_bucket"`
	S3Prefix       string   `toml:"s3_prefix" yaml:"s3_prefix" json:"s3_prefix"`
	AWSProfile     string   `toml:"aws_profile" yaml:"aws_profile" json:"aws_profile"`

	TelegramToken    string `toml:"telegram_bot_token" yaml:"telegram_bot_token" json:"telegram_bot_token"`
	TelegramChatID   int64  `toml:"telegram_chat_id" yaml:"telegram_chat_id" json:"telegram_chat_id"`
	TelegramUsername string `toml:"telegram_username" yaml:"telegram_username" json:"telegram_username"`

	// TelegramWebhookSecret must match the X-Telegram-Bot-Api-Secret-Token
	// header set when registering the webhook.
	TelegramWebhookSecret string `toml:"telegram_webhook_secret" yaml:"telegram_webhook_secret" json:"telegram_webhook_secret"`
	WhatsAppLink          string `toml:"whatsapp_link" yaml:"whatsapp_link" json:"whatsapp_link"`
}

// IsDev reports whether the process runs in the local development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// TelegramEnabled reports whether operator notifications can be sent.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// MaxUploadBytes is the multipart body limit for mesh uploads.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load reads .env, then the optional config file at path, then environment
// variables, and returns a populated Config.
func Load(path string) (Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if _, err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: could not read .env: %v", err)
	}

	var cfg Config
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)

	if len(cfg.AdminEmails) == 0 {
		log.Print("warning: ADMIN_EMAIL_1 is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set; admin login disabled")
	}
	if cfg.TelegramEnabled() && cfg.TelegramWebhookSecret == "" {
		log.Print("warning: TELEGRAM_WEBHOOK_SECRET is not set; webhook updates are rejected")
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		log.Print("warning: TELEGRAM_BOT_TOKEN is set but TELEGRAM_CHAT_ID is not; notifications disabled")
	}

	return cfg, nil
}

// LoadFile parses a TOML, YAML or JSON config file chosen by extension.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse TOML config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse JSON config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, ext)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.MarkupMode, "MARKUP_MODE")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.StorageBackend, "STORAGE_BACKEND")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Prefix, "S3_PREFIX")
	setString(&cfg.AWSProfile, "AWS_PROFILE")
	setString(&cfg.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.TelegramUsername, "TELEGRAM_USERNAME")
	setString(&cfg.TelegramWebhookSecret, "TELEGRAM_WEBHOOK_SECRET")
	setString(&cfg.WhatsAppLink, "WHATSAPP_LINK")

	var emails []string
	for _, key := range []string{"ADMIN_EMAIL_1", "ADMIN_EMAIL_2", "ADMIN_EMAIL_3"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			emails = append(emails, v)
		}
	}
	if len(emails) > 0 {
		cfg.AdminEmails = emails
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", v)
		}
		cfg.MaxUploadMB = mb
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = defaultUploadDir
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = StorageLocal
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}
	if cfg.TelegramUsername == "" {
		cfg.TelegramUsername = defaultTGUsername
	}
	if cfg.WhatsAppLink == "" {
		cfg.WhatsAppLink = defaultWhatsApp
	}
}
