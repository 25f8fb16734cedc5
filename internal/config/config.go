// Package config resolves process configuration.
//
// Secrets come from the process environment, usually populated from a
// project-local .env file. Non-secret settings come from the TOML settings
// store and may be overridden by CARDSCRUB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/custodia-labs/cardscrub/internal/adapters/driven/oauth"
	"github.com/custodia-labs/cardscrub/internal/adapters/driven/zoho"
	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
)

// DefaultEnvFile is the project-local secrets file.
const DefaultEnvFile = ".env"

// EnvPrefix prefixes environment overrides of non-secret settings.
const EnvPrefix = "CARDSCRUB"

// Required secret environment variables.
const (
	EnvRefreshToken   = "REFRESH_TOKEN"
	EnvClientID       = "CLIENT_ID"
	EnvClientSecret   = "CLIENT_SECRET"
	EnvOrganisationID = "ORGANISATION_ID"
	EnvOrganizationID = "ORGANIZATION_ID"
)

// Non-secret setting keys.
const (
	KeyAPIBaseURL        = "api_base_url"
	KeyTokenURL          = "token_url"
	KeyRequestsPerMinute = "requests_per_minute"
	KeyHTTPTimeout       = "http_timeout_seconds"
)

// Kind is the value type of a setting.
type Kind int

const (
	KindString Kind = iota
	KindInt
)

// Setting describes one non-secret setting.
type Setting struct {
	Key         string
	Kind        Kind
	Default     any
	Description string
}

// Settings lists every supported non-secret setting.
var Settings = []Setting{
	{KeyAPIBaseURL, KindString, zoho.DefaultBaseURL, "Zoho Books API root (pick your data centre)"},
	{KeyTokenURL, KindString, oauth.DefaultTokenURL, "Zoho accounts token endpoint"},
	{KeyRequestsPerMinute, KindInt, zoho.DefaultRequestsPerMinute, "proactive request throttle, 0 disables"},
	{KeyHTTPTimeout, KindInt, int(zoho.DefaultTimeout / time.Second), "per-request timeout in seconds"},
}

// Config is the resolved process configuration.
type Config struct {
	RefreshToken   string
	ClientID       string
	ClientSecret   string
	OrganizationID string

	APIBaseURL        string
	TokenURL          string
	RequestsPerMinute int
	HTTPTimeout       time.Duration
}

// Credentials returns the token exchange credentials.
func (c *Config) Credentials() oauth.Credentials {
	return oauth.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RefreshToken: c.RefreshToken,
	}
}

// ClientOptions returns the HTTP gateway options.
func (c *Config) ClientOptions() zoho.Options {
	return zoho.Options{
		BaseURL:           c.APIBaseURL,
		OrganizationID:    c.OrganizationID,
		RequestsPerMinute: float64(c.RequestsPerMinute),
		Timeout:           c.HTTPTimeout,
	}
}

// LoadEnvFile loads path into the process environment, replacing existing
// values. An empty path skips loading.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &domain.ConfigError{File: path}
		}
		return &domain.ConfigError{File: path, Err: err}
	}
	if err := godotenv.Overload(path); err != nil {
		return &domain.ConfigError{File: path, Err: err}
	}
	return nil
}

// Load resolves configuration from the environment and the settings store.
// Precedence: environment, then store, then defaults. store may be nil.
func Load(store driven.ConfigStore) (*Config, error) {
	v := newViper(store)

	secrets := []struct {
		key  string
		envs []string
	}{
		{"refresh_token", []string{EnvRefreshToken}},
		{"client_id", []string{EnvClientID}},
		{"client_secret", []string{EnvClientSecret}},
		{"organization_id", []string{EnvOrganisationID, EnvOrganizationID}},
	}
	values := make(map[string]string, len(secrets))
	for _, s := range secrets {
		_ = v.BindEnv(append([]string{s.key}, s.envs...)...)
		val := strings.TrimSpace(v.GetString(s.key))
		if val == "" {
			return nil, &domain.ConfigError{Key: s.envs[0]}
		}
		values[s.key] = val
	}

	cfg := &Config{
		RefreshToken:      values["refresh_token"],
		ClientID:          values["client_id"],
		ClientSecret:      values["client_secret"],
		OrganizationID:    values["organization_id"],
		APIBaseURL:        v.GetString(KeyAPIBaseURL),
		TokenURL:          v.GetString(KeyTokenURL),
		RequestsPerMinute: v.GetInt(KeyRequestsPerMinute),
		HTTPTimeout:       time.Duration(v.GetInt(KeyHTTPTimeout)) * time.Second,
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, &domain.ValidationError{Field: KeyHTTPTimeout, Reason: "must be positive"}
	}
	return cfg, nil
}

// Effective returns every non-secret setting as resolved right now,
// keyed by setting name.
func Effective(store driven.ConfigStore) map[string]any {
	v := newViper(store)
	out := make(map[string]any, len(Settings))
	for _, s := range Settings {
		switch s.Kind {
		case KindInt:
			out[s.Key] = v.GetInt(s.Key)
		default:
			out[s.Key] = v.GetString(s.Key)
		}
	}
	return out
}

func newViper(store driven.ConfigStore) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, s := range Settings {
		v.SetDefault(s.Key, s.Default)
	}
	if store != nil {
		stored := make(map[string]any)
		for _, key := range store.Keys() {
			if val, ok := store.Get(key); ok {
				stored[key] = val
			}
		}
		_ = v.MergeConfigMap(stored)
	}
	return v
}

// EnvName returns the environment variable that overrides setting key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// Source reports where the effective value of key comes from: "env",
// "file" or "default". Empty variables do not count, matching viper.
func Source(store driven.ConfigStore, key string) string {
	if os.Getenv(EnvName(key)) != "" {
		return "env"
	}
	if store != nil {
		if _, ok := store.Get(key); ok {
			return "file"
		}
	}
	return "default"
}

// Lookup returns the definition of key.
func Lookup(key string) (Setting, bool) {
	for _, s := range Settings {
		if s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// ParseValue converts raw to the type of setting key.
func ParseValue(key, raw string) (any, error) {
	s, ok := Lookup(key)
	if !ok {
		return nil, &domain.ValidationError{
			Field:  key,
			Reason: "unknown setting, expected one of " + strings.Join(Keys(), ", "),
		}
	}

	raw = strings.TrimSpace(raw)
	switch s.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &domain.ValidationError{Field: key, Reason: fmt.Sprintf("%q is not an integer", raw)}
		}
		if n < 0 {
			return nil, &domain.ValidationError{Field: key, Reason: "must not be negative"}
		}
		return n, nil
	default:
		if raw == "" {
			return nil, &domain.ValidationError{Field: key}
		}
		return raw, nil
	}
}

// Keys returns the supported setting keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(Settings))
	for _, s := range Settings {
		keys = append(keys, s.Key)
	}
	sort.Strings(keys)
	return keys
}
