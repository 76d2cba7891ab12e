package globals

import (
	"errors"
	"fmt"
	"orderharvest/internal/db"
	"orderharvest/internal/scrapers/storefront"
	"orderharvest/lib/configutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type StorefrontConfig struct {
	BaseURL           string  `json:"base_url"`
	SessionCookie     string  `json:"session_cookie"`
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

type LocaleConfig struct {
	// Slot is the name of the snapshot the locale's history is stored in.
	Slot       string `json:"slot"`
	StartURL   string `json:"start_url"`
	Vocabulary string `json:"vocabulary"`
}

type TelemetryConfig struct {
	Debug               bool              `json:"debug"`
	OtlpMetricsEndpoint string            `json:"otlp_metrics_endpoint"`
	OtlpHeaders         map[string]string `json:"otlp_headers"`
}

type Config struct {
	Database   db.Config        `json:"database"`
	Storefront StorefrontConfig `json:"storefront"`
	// Locales holds pointers so that a partial entry in a config file is
	// merged field by field with the defaults.
	Locales       map[string]*LocaleConfig `json:"locales"`
	DefaultLocale string                   `json:"default_locale"`
	Timezone      string                   `json:"timezone"`
	Telemetry     TelemetryConfig          `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Database: db.Config{URL: "orderharvest.db"},
		Storefront: StorefrontConfig{
			BaseURL:        "https://shop.hololivepro.com",
			TimeoutSeconds: 30,
		},
		Locales: map[string]*LocaleConfig{
			"en": {
				Slot:       "purchaseHistoryEn",
				StartURL:   "https://shop.hololivepro.com/en/account",
				Vocabulary: "en",
			},
			"ja": {
				Slot:       "purchaseHistory",
				StartURL:   "https://shop.hololivepro.com/account",
				Vocabulary: "ja",
			},
		},
		DefaultLocale: "en",
	}
}

// LoadConfig reads the config file, a missing file leaves the defaults in place.
// With search set, a relative path is also looked up in every parent of the
// working directory.
func LoadConfig(path string, search bool) (Config, error) {
	read := configutil.ReadWithDefaults[Config]
	if search && !filepath.IsAbs(path) {
		read = configutil.ReadRecursivelyWithDefaults[Config]
	}
	cfg, err := read(path, DefaultConfig())
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveLocale returns the locale to use and its settings, an empty name
// picks the default locale.
func (c Config) ResolveLocale(name string) (string, LocaleConfig, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = c.DefaultLocale
	}
	entry, ok := c.Locales[name]
	if !ok {
		known := make([]string, 0, len(c.Locales))
		for k := range c.Locales {
			known = append(known, k)
		}
		sort.Strings(known)
		return "", LocaleConfig{}, fmt.Errorf("unknown locale %q, configured locales: %s", name, strings.Join(known, ", "))
	}
	if entry == nil || entry.Slot == "" {
		return "", LocaleConfig{}, fmt.Errorf("locale %q has no snapshot slot", name)
	}
	locale := *entry
	if locale.Vocabulary == "" {
		locale.Vocabulary = name
	}
	return name, locale, nil
}

// StorefrontOptions builds the client options for a locale.
func (c Config) StorefrontOptions(locale LocaleConfig) (storefront.Options, error) {
	vocab, err := storefront.VocabularyFor(locale.Vocabulary)
	if err != nil {
		return storefront.Options{}, err
	}
	return storefront.Options{
		BaseURL:           c.Storefront.BaseURL,
		SessionCookie:     c.Storefront.SessionCookie,
		UserAgent:         c.Storefront.UserAgent,
		Timeout:           time.Duration(c.Storefront.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Storefront.RequestsPerSecond,
		CloudflareBypass:  c.Storefront.CloudflareBypass,
		Vocabulary:        vocab,
	}, nil
}
