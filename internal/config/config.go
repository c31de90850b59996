package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	S3AuditBucket string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion        string
	SNSAlertTopicARN string // empty disables security alerts

	// AdminAccessSecret is the reserved password that promotes a verified
	// account to administrator. It is a documented backdoor: every use is
	// audited and alerted. Empty disables the side channel entirely.
	AdminAccessSecret string

	CodeTTL         time.Duration // verification code validity window
	ResendCooldown  time.Duration // minimum gap between issues per email
	MaxCodeAttempts int           // wrong submissions before a code is dead
	PendingAuthTTL  time.Duration // lifetime of an in-flight auth challenge

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Profiles          string
	Sessions          string
	VerificationCodes string
	PendingAuth       string
	BannedIPs         string
	BannedEmails      string
	UserRoles         string
	AuditLogs         string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Profiles:          getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
			Sessions:          getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			VerificationCodes: getEnv("DYNAMO_TABLE_VERIFICATION_CODES", "verification_codes"),
			PendingAuth:       getEnv("DYNAMO_TABLE_PENDING_AUTH", "pending_auth"),
			BannedIPs:         getEnv("DYNAMO_TABLE_BANNED_IPS", "banned_ips"),
			BannedEmails:      getEnv("DYNAMO_TABLE_BANNED_EMAILS", "banned_emails"),
			UserRoles:         getEnv("DYNAMO_TABLE_USER_ROLES", "user_roles"),
			AuditLogs:         getEnv("DYNAMO_TABLE_AUDIT_LOGS", "audit_logs"),
		},

		S3AuditBucket: getEnv("S3_AUDIT_BUCKET", "auth-gate-audit"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		RefreshTokenDur:   getEnvDuration("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSAlertTopicARN: getEnv("SNS_ALERT_TOPIC_ARN", ""),

		AdminAccessSecret: getEnv("ADMIN_ACCESS_SECRET", ""),

		CodeTTL:         getEnvDuration("VERIFICATION_CODE_TTL", 10*time.Minute),
		ResendCooldown:  getEnvDuration("RESEND_COOLDOWN", 60*time.Second),
		MaxCodeAttempts: getEnvInt("MAX_CODE_ATTEMPTS", 5),
		PendingAuthTTL:  getEnvDuration("PENDING_AUTH_TTL", 15*time.Minute),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
