package config

type Config struct {
	// App: Global application metadata
	App InConfigAppConfig `mapstructure:"app"`

	// Server: Network configuration and execution environment
	Server ServerConfig `mapstructure:"server"`

	// Database: Engine selection and draft retention policy
	Database DatabaseConfig `mapstructure:"database"`

	// Site: Everything the visitor sees (titles, colours, moderation mode)
	Site SiteConfig `mapstructure:"site"`

	// Security: Submission password, sessions, CORS and rate limiting
	Security SecurityConfig `mapstructure:"security"`

	// Media: Storage backend and upload processing
	Media MediaConfig `mapstructure:"media"`

	// Embed: oEmbed link resolution
	Embed EmbedConfig `mapstructure:"embed"`

	// Cache: Rendered page cache for the public listing
	Cache CacheConfig `mapstructure:"cache"`

	// Notification: Outbound mail on final submit
	Notification NotificationConfig `mapstructure:"notification"`
}

type InConfigAppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	// Port: The TCP port the HTTP server will bind to (default: 8000)
	Port int `mapstructure:"port"`

	// Env: Execution context (development, staging, production)
	Env string `mapstructure:"env"`

	// BaseURL: The public-facing root URL used for absolute links in mails
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	// Driver: "sqlite" or "postgres"
	Driver string `mapstructure:"driver"`

	// Path: SQLite database file (e.g., ./data/memorial.db)
	Path string `mapstructure:"path"`

	// DSN: Postgres connection string
	DSN string `mapstructure:"dsn"`

	// PruneInterval: How often the draft janitor runs (e.g., "1h")
	PruneInterval string `mapstructure:"prune_interval"`

	// DraftMaxAge: Untouched empty drafts older than this are removed
	DraftMaxAge string `mapstructure:"draft_max_age"`
}

type SiteConfig struct {
	Title               string `mapstructure:"title"`
	Subtitle            string `mapstructure:"subtitle"`
	Description         string `mapstructure:"description"`
	PersonImage         string `mapstructure:"person_image"`
	HeaderGradientStart string `mapstructure:"header_gradient_start"`
	HeaderGradientEnd   string `mapstructure:"header_gradient_end"`
	BackgroundImage     string `mapstructure:"background_image"`

	// Theme: default, clean-minimal or warm-elegant
	Theme string `mapstructure:"theme"`

	// RequireApproval: Only accepted submissions are listed when true.
	// Re-read on config file change, see RequireApproval().
	RequireApproval bool `mapstructure:"require_approval"`

	ContactEmail  string `mapstructure:"contact_email"`
	ContactPrompt string `mapstructure:"contact_prompt"`

	// FooterText and DonationText are trusted HTML.
	FooterText   string `mapstructure:"footer_text"`
	DonationText string `mapstructure:"donation_text"`

	PageSize int    `mapstructure:"page_size"`
	Timezone string `mapstructure:"timezone"`
}

type SecurityConfig struct {
	// SubmissionPassword: Shared secret guarding the submission workflow
	SubmissionPassword string `mapstructure:"submission_password"`

	// SessionSecret: Key used to sign session cookies
	SessionSecret string `mapstructure:"session_secret"`

	SessionName string `mapstructure:"session_name"`

	// CorsOrigins: Allowed origins for the JSON endpoints
	CorsOrigins []string `mapstructure:"cors_origins"`

	// TrustedProxies: Addresses or CIDR blocks whose X-Forwarded-For
	// header names the client. Empty trusts no forwarding header.
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	// RateLimit: Per-IP token bucket
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Requests: Number of allowed requests per time window
	Requests int `mapstructure:"requests"`

	// Window: The timeframe for the request limit (e.g., "1s", "1m")
	Window string `mapstructure:"window"`

	// Burst: Temporary allowed spike capacity above the steady-rate limit
	Burst int `mapstructure:"burst"`
}

type MediaConfig struct {
	// Backend: "local" or "gcs"
	Backend   string `mapstructure:"backend"`
	Root      string `mapstructure:"root"`
	URL       string `mapstructure:"url"`
	Bucket    string `mapstructure:"bucket"`
	ProjectID string `mapstructure:"project_id"`

	// MaxUploadSize: Request body cap for image uploads (e.g., "20MB")
	MaxUploadSize string `mapstructure:"max_upload_size"`

	// MaxDimension: Longest side after processing, in pixels
	MaxDimension int `mapstructure:"max_dimension"`

	JPEGQuality int `mapstructure:"jpeg_quality"`
}

type EmbedConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Timeout  string `mapstructure:"timeout"`
	MaxWidth int    `mapstructure:"max_width"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// MaxCapacity: Maximum RAM allocated for cache in MB (e.g., 16)
	MaxCapacity int `mapstructure:"max_capacity"`

	// TTL: Expiration time for cached pages (e.g., "1m")
	TTL string `mapstructure:"ttl"`
}

type NotificationConfig struct {
	// Email: Recipient; empty disables notifications
	Email   string `mapstructure:"email"`
	From    string `mapstructure:"from"`
	Command string `mapstructure:"command"`
	Timeout string `mapstructure:"timeout"`
}
