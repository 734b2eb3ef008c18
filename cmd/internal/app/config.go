package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Empty DatabaseURL selects the in-memory identity and device stores.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Empty RedisAddr selects the in-memory session and OTP stores.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CORS allow-list. The mobile clients call from app webviews, so the
	// default is wide open like a public API gateway.
	CORSAllowedOrigins []string

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// If true, CORBIT_TOKEN_HMAC_KEY must be set (>= 32 bytes) so bearer
	// tokens are digested with HMAC instead of plain SHA-256.
	RequireTokenHMAC bool

	// Demo fixtures: two users with password "123456" plus sample senders,
	// groups, and packages. On by default for the in-memory stores.
	SeedDemoData bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CORBIT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CORBIT_LOG_LEVEL", "info"),
		LogFormat: EnvString("CORBIT_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CORBIT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CORBIT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CORBIT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CORBIT_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CORBIT_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("CORBIT_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CORBIT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CORBIT_DB_MIN_CONNS", 0),

		RedisAddr:     EnvString("CORBIT_REDIS_ADDR", ""),
		RedisPassword: EnvString("CORBIT_REDIS_PASSWORD", ""),
		RedisDB:       EnvInt("CORBIT_REDIS_DB", 0),

		CORSAllowedOrigins: EnvStrings("CORBIT_CORS_ALLOWED_ORIGINS", []string{"*"}),

		ReadinessRequireDB: EnvBool("CORBIT_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("CORBIT_REQUIRE_TOKEN_HMAC", false),

		SeedDemoData: EnvBool("CORBIT_SEED_DEMO", true),
	}
}
