package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The struct is built once in main and passed into
// every component that needs it; nothing reads the environment after startup.
type Config struct {
	Env            string   // application environment (e.g. "dev", "prod")
	Port           string   // HTTP port to listen on
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	BcryptCost     int      // bcrypt cost for password hashing
	SessionTTLDays int      // session token time-to-live in days
	AllowedOrigins []string // CORS allow-list; ["*"] allows any origin
	UploadDir      string   // directory where uploaded files are stored
	SMTP           SMTPConfig
}

// SMTPConfig carries credentials for the outgoing mail server. Delivery is
// best-effort: when Host, User or Pass are empty the mailer reports
// "not sent" instead of failing the request that triggered it.
type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
	UseSSL bool
}

// Load reads configuration values from environment variables and returns a
// Config. Database variables are required and enforced by must(); missing
// values cause the program to exit with a fatal log message. Everything else
// falls back to a sane default.
func Load() Config {
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = os.Getenv("SMTP_USER")
	}
	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           getenv("APP_PORT", "8000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		SessionTTLDays: envInt("SESSION_TTL_DAYS", 7),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "*")),
		UploadDir:      getenv("UPLOAD_DIR", "docs/uploads"),
		SMTP: SMTPConfig{
			Host:   os.Getenv("SMTP_HOST"),
			Port:   envInt("SMTP_PORT", 587),
			User:   os.Getenv("SMTP_USER"),
			Pass:   os.Getenv("SMTP_PASS"),
			From:   smtpFrom,
			UseSSL: envBool("SMTP_USE_SSL", false),
		},
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
