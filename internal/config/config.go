package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"memorial/pkg/logger"
	"memorial/pkg/utils"
)

const (
	DefaultPassword = "changeme"
	DefaultSecret   = "changeme"
)

var (
	AppConfig *Config

	requireApproval atomic.Bool
)

var themes = map[string]bool{"default": true, "clean-minimal": true, "warm-elegant": true}

func (c *Config) GetBaseUrl() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// RequireApproval returns the live moderation toggle. It follows config file
// edits when Watch is active.
func RequireApproval() bool {
	return requireApproval.Load()
}

func SetRequireApproval(v bool) {
	requireApproval.Store(v)
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MEMORIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("security.submission_password", "MEMORIAL_SECURITY_SUBMISSION_PASSWORD", "SUBMISSION_PASSWORD")
	v.BindEnv("security.session_secret", "MEMORIAL_SECURITY_SESSION_SECRET", "SESSION_SECRET")
	v.BindEnv("database.dsn", "MEMORIAL_DATABASE_DSN", "DATABASE_URL")
	v.BindEnv("server.port", "MEMORIAL_SERVER_PORT", "PORT")

	return v
}

// Read builds the configuration from defaults, the config file (when
// present) and the environment, then validates it.
func Read(configFile string) (*Config, *viper.Viper, error) {
	v := newViper(configFile)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && configFile == "" {
			logger.LogInfo("Config file not found. Using Environment Variables and Defaults.")
		} else {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Load reads the configuration into AppConfig and exits on error.
func Load(configFile string) *viper.Viper {
	cfg, v, err := Read(configFile)
	if err != nil {
		logger.LogFatal("CONFIGURATION ERROR: %v", err)
		return nil
	}

	AppConfig = cfg
	SetRequireApproval(cfg.Site.RequireApproval)

	logger.LogInfo("⚙️  %s v%s Initialized | Env: %s | Port: %d",
		cfg.App.Name,
		cfg.App.Version,
		cfg.Server.Env,
		cfg.Server.Port,
	)
	return v
}

// Default returns a validated configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	cfg.normalize()
	return cfg
}

// Watch follows the config file and applies the moderation toggle on change.
// Other keys need a restart.
func Watch(v *viper.Viper) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next := v.GetBool("site.require_approval")
		if prev := RequireApproval(); prev != next {
			SetRequireApproval(next)
			logger.LogInfo("Config reloaded: site.require_approval %v -> %v", prev, next)
		}
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "Memorial")
	v.SetDefault("app.version", "0.1.0")

	// Server
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.base_url", "")

	// Database
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/memorial.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.prune_interval", "1h")
	v.SetDefault("database.draft_max_age", "72h")

	// Site
	v.SetDefault("site.title", "Memorial Page")
	v.SetDefault("site.subtitle", "In Loving Memory")
	v.SetDefault("site.description", "")
	v.SetDefault("site.person_image", "images/person.png")
	v.SetDefault("site.header_gradient_start", "#667eea")
	v.SetDefault("site.header_gradient_end", "#764ba2")
	v.SetDefault("site.background_image", "")
	v.SetDefault("site.theme", "default")
	v.SetDefault("site.require_approval", false)
	v.SetDefault("site.contact_email", "")
	v.SetDefault("site.contact_prompt", "Questions?")
	v.SetDefault("site.footer_text", "")
	v.SetDefault("site.donation_text", "")
	v.SetDefault("site.page_size", 10)
	v.SetDefault("site.timezone", "")

	// Security & Limits
	v.SetDefault("security.submission_password", DefaultPassword)
	v.SetDefault("security.session_secret", DefaultSecret)
	v.SetDefault("security.session_name", "memorial_session")
	v.SetDefault("security.cors_origins", []string{})
	v.SetDefault("security.trusted_proxies", []string{})
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1s")
	v.SetDefault("security.rate_limit.burst", 50)

	// Media
	v.SetDefault("media.backend", "local")
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.url", "/media/")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.project_id", "")
	v.SetDefault("media.max_upload_size", "20MB")
	v.SetDefault("media.max_dimension", 2000)
	v.SetDefault("media.jpeg_quality", 85)

	// Embeds
	v.SetDefault("embed.enabled", true)
	v.SetDefault("embed.timeout", "5s")
	v.SetDefault("embed.max_width", 640)

	// Caching
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("cache.max_capacity", 16) // MB

	// Notification
	v.SetDefault("notification.email", "")
	v.SetDefault("notification.from", "")
	v.SetDefault("notification.command", "/usr/sbin/sendmail")
	v.SetDefault("notification.timeout", "30s")
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Media.Backend = strings.ToLower(strings.TrimSpace(c.Media.Backend))
	c.Site.Theme = strings.ToLower(strings.TrimSpace(c.Site.Theme))
	if !themes[c.Site.Theme] {
		c.Site.Theme = "default"
	}
	if c.Site.PageSize <= 0 {
		c.Site.PageSize = 10
	}
	if !strings.HasSuffix(c.Media.URL, "/") {
		c.Media.URL += "/"
	}
}

func (c *Config) Validate() error {
	durations := map[string]string{
		"database.prune_interval":    c.Database.PruneInterval,
		"database.draft_max_age":     c.Database.DraftMaxAge,
		"security.rate_limit.window": c.Security.RateLimit.Window,
		"embed.timeout":              c.Embed.Timeout,
		"cache.ttl":                  c.Cache.TTL,
		"notification.timeout":       c.Notification.Timeout,
	}
	for key, val := range durations {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("invalid %s format '%s': %v", key, val, err)
		}
	}

	if _, err := utils.ParseColor(c.Site.HeaderGradientStart); err != nil {
		return fmt.Errorf("invalid site.header_gradient_start: %v", err)
	}
	if _, err := utils.ParseColor(c.Site.HeaderGradientEnd); err != nil {
		return fmt.Errorf("invalid site.header_gradient_end: %v", err)
	}

	if c.Site.Timezone != "" {
		if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
			return fmt.Errorf("invalid site.timezone '%s': %v", c.Site.Timezone, err)
		}
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn (or DATABASE_URL) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver '%s' (want sqlite or postgres)", c.Database.Driver)
	}

	switch c.Media.Backend {
	case "local":
	case "gcs":
		if c.Media.Bucket == "" {
			return fmt.Errorf("media.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown media.backend '%s' (want local or gcs)", c.Media.Backend)
	}

	if c.Media.JPEGQuality < 1 || c.Media.JPEGQuality > 100 {
		return fmt.Errorf("media.jpeg_quality must be between 1 and 100")
	}
	if c.Media.MaxDimension < 16 {
		return fmt.Errorf("media.max_dimension must be at least 16")
	}

	if _, err := utils.ParseProxies(c.Security.TrustedProxies); err != nil {
		return fmt.Errorf("security.trusted_proxies: %w", err)
	}

	// Security: shared secrets
	if c.Security.SubmissionPassword == "" {
		return fmt.Errorf("security.submission_password cannot be empty")
	}
	if c.Security.SubmissionPassword == DefaultPassword || c.Security.SessionSecret == DefaultSecret || c.Security.SessionSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("security.submission_password and security.session_secret cannot be default or empty in production environment")
		}
		logger.LogWarn("Security Alert: Using default submission password or session secret. Do not use this in production!")
	}
	return nil
}
