package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Port        string
	Env         string
	SendEmails  bool // false only when SEND_REAL_EMAILS is explicitly "false"
	DebugErrors bool

	SMTP SMTP
	Mail Mail

	ContentDir string

	// DBURL enables the submission log when set.
	DBURL        string
	AdminAPIKeys map[string]string // apiKey -> admin name
}

// SMTP holds outbound mail transport settings.
type SMTP struct {
	Host          string
	Port          int
	Secure        bool // implicit TLS; otherwise STARTTLS when offered
	User          string
	Pass          string
	SkipTLSVerify bool
	Timeout       time.Duration
}

// Mail holds sender identity and routing for portal notifications.
type Mail struct {
	FromName             string
	FromEmail            string
	AdminEmail           string
	SuggestionAdminEmail string
	AdditionalRecipients []string
	Location             *time.Location
}

const (
	defaultPort        = "8080"
	defaultSMTPHost    = "smtp.gmail.com"
	defaultSMTPPort    = 465
	defaultSMTPTimeout = 15 * time.Second
	defaultTimezone    = "America/Los_Angeles"
	defaultContentDir  = "./src/data"
)

var (
	ErrAdminKeys   = errors.New(`ADMIN_API_KEYS must be "name:key,name:key"`)
	ErrSMTPTimeout = errors.New("SMTP_TIMEOUT must be a positive duration")
)

// Load reads a local .env (if present) and then the process environment.
// ADMIN_API_KEYS format: "alice:key1,bob:key2"
func Load() (Config, error) {
	// A missing .env is normal in deployed environments.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	env := getEnv("APP_ENV", "")
	if env == "" {
		env = getEnv("NODE_ENV", "")
	}

	cfg := Config{
		Port:        getEnv("PORT", defaultPort),
		Env:         env,
		SendEmails:  getEnv("SEND_REAL_EMAILS", "") != "false",
		DebugErrors: getEnv("DEBUG_ERRORS", "") == "true",
		ContentDir:  getEnv("CONTENT_DIR", defaultContentDir),
		DBURL:       getEnv("DB_URL", ""),
	}

	timeout := defaultSMTPTimeout
	if raw := getEnv("SMTP_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, ErrSMTPTimeout
		}
		timeout = d
	}

	cfg.SMTP = SMTP{
		Host:          getEnv("SMTP_HOST", defaultSMTPHost),
		Port:          parsePort(getEnv("SMTP_PORT", "")),
		Secure:        getEnv("SMTP_SECURE", "") != "false",
		User:          getEnv("SMTP_USER", ""),
		Pass:          getEnv("SMTP_PASS", ""),
		SkipTLSVerify: getEnv("SMTP_TLS_SKIP_VERIFY", "") == "true",
		Timeout:       timeout,
	}

	cfg.Mail = Mail{
		FromName:             getEnv("FROM_NAME", ""),
		FromEmail:            getEnv("FROM_EMAIL", ""),
		AdminEmail:           getEnv("ADMIN_EMAIL", ""),
		SuggestionAdminEmail: getEnv("SUGGESTION_ADMIN_EMAIL", ""),
		AdditionalRecipients: splitList(getEnv("NJROTC_ADDITIONAL_EMAILS", "")),
		Location:             loadLocation(getEnv("MAIL_TIMEZONE", defaultTimezone)),
	}

	keys, err := parseAdminKeys(getEnv("ADMIN_API_KEYS", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.AdminAPIKeys = keys

	return cfg, nil
}

// TestMode reports whether submissions should be accepted without sending mail.
func (c Config) TestMode() bool {
	return c.Env == "development" || !c.SendEmails
}

// Development reports whether the service runs with development defaults.
func (c Config) Development() bool {
	return c.Env == "development"
}

// HasCredentials reports whether SMTP auth is configured.
func (s SMTP) HasCredentials() bool {
	return s.User != "" && s.Pass != ""
}

// Addr is the host:port dial target.
func (s SMTP) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Sender returns the From address, using fallbackName when FROM_NAME is unset.
func (c Config) Sender(fallbackName string) mail.Address {
	return mail.Address{
		Name:    firstNonEmpty(c.Mail.FromName, fallbackName),
		Address: firstNonEmpty(c.Mail.FromEmail, c.SMTP.User),
	}
}

// SignupRecipients is the staff list for signup notices.
func (c Config) SignupRecipients() []string {
	out := make([]string, 0, 1+len(c.Mail.AdditionalRecipients))
	if admin := firstNonEmpty(c.Mail.AdminEmail, c.SMTP.User); admin != "" {
		out = append(out, admin)
	}
	return append(out, c.Mail.AdditionalRecipients...)
}

// SuggestionRecipient is the staff inbox for suggestion-box mail.
func (c Config) SuggestionRecipient() string {
	return firstNonEmpty(c.Mail.SuggestionAdminEmail, c.Mail.AdminEmail, c.SMTP.User)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parsePort(raw string) int {
	p, err := strconv.Atoi(raw)
	if err != nil || p <= 0 {
		return defaultSMTPPort
	}
	return p
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseAdminKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, ErrAdminKeys
		}
		name := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if name == "" || key == "" {
			return nil, ErrAdminKeys
		}
		keys[key] = name
	}
	return keys, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
