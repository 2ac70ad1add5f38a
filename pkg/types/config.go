package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"4000"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"public"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"60"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Content
	// The first entry is the base language stored on owner rows.
	Languages []string `envconfig:"LANGUAGES" default:"en,ar,fr"`

	// HTTP protection
	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"https://www.kytgbm.com"`
	RateLimitRequests  int      `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindowSec int      `envconfig:"RATE_LIMIT_WINDOW_SEC" default:"900"`

	// Uploads
	MaxUploadMB       int64 `envconfig:"MAX_UPLOAD_MB" default:"64"`
	MaxImages         int   `envconfig:"MAX_IMAGES" default:"20"`
	UploadConcurrency int   `envconfig:"UPLOAD_CONCURRENCY" default:"4"`
	CleanupRetries    int   `envconfig:"CLEANUP_RETRIES" default:"3"`

	// Media host (S3 compatible)
	MediaBucket        string `envconfig:"MEDIA_BUCKET"`
	MediaFolder        string `envconfig:"MEDIA_FOLDER" default:"construction-projects"`
	MediaPublicBaseURL string `envconfig:"MEDIA_PUBLIC_BASE_URL"`
	MediaEndpoint      string `envconfig:"MEDIA_ENDPOINT"`

	// Auth
	// AuthProvider is "local" (users table + bcrypt) or "cognito".
	AuthProvider  string `envconfig:"AUTH_PROVIDER" default:"local"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"720"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`
	// Members of this user pool group are admins.
	CognitoAdminGroup string `envconfig:"COGNITO_ADMIN_GROUP" default:"admin"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
