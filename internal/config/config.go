package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/form"
	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/location"
)

// DefaultPath is read when SOLIX_CONFIG is unset. A missing default file is
// not an error.
const DefaultPath = "solix.yaml"

var (
	ErrInvalidURL      = errors.New("config: invalid endpoint url")
	ErrInvalidRange    = errors.New("config: value out of range")
	ErrInvalidDistrict = errors.New("config: unknown default district")
)

type Config struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	DatabaseURL    string   `yaml:"database_url"`
	SecureCookies  bool     `yaml:"secure_cookies"`

	Analysis Endpoint `yaml:"analysis"`
	Chat     Endpoint `yaml:"chat"`
	Form     Form     `yaml:"form"`
	Location Location `yaml:"location"`
}

type Endpoint struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (e Endpoint) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

type Form struct {
	MinBillLKR      float64 `yaml:"min_bill_lkr"`
	LoanTermYears   int     `yaml:"loan_term_years"`
	LoanRatePct     float64 `yaml:"loan_rate_pct"`
	DefaultDistrict string  `yaml:"default_district"`
}

type Location struct {
	DefaultLat             float64 `yaml:"default_lat"`
	DefaultLon             float64 `yaml:"default_lon"`
	ClassifyTimeoutSeconds int     `yaml:"classify_timeout_seconds"`
	// DeviceFix is reported by "use my location" on hosts with a fixed
	// position. Nil means the host has no location capability.
	DeviceFix *geo.Point `yaml:"device_fix"`
}

// Default returns the built-in configuration.
func Default() Config {
	rules := form.DefaultRules()
	return Config{
		Port: "5050",
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		Analysis: Endpoint{URL: "http://127.0.0.1:8000/api/analyze/full", TimeoutSeconds: 120},
		Chat:     Endpoint{URL: "http://127.0.0.1:8000/api/chat", TimeoutSeconds: 60},
		Form: Form{
			MinBillLKR:      rules.MinBillLKR,
			LoanTermYears:   rules.LoanTermYears,
			LoanRatePct:     rules.LoanRatePct,
			DefaultDistrict: string(rules.DefaultDistrict),
		},
		Location: Location{
			DefaultLat:             geo.Colombo.Lat,
			DefaultLon:             geo.Colombo.Lon,
			ClassifyTimeoutSeconds: int(location.DefaultClassifyTimeout / time.Second),
		},
	}
}

// Load reads the YAML file named by SOLIX_CONFIG (or DefaultPath), applies
// environment overrides and validates the result.
func Load() (Config, error) {
	path := os.Getenv("SOLIX_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Analysis.URL, "ANALYSIS_URL")
	setString(&c.Chat.URL, "CHAT_URL")
	setString(&c.Form.DefaultDistrict, "DEFAULT_DISTRICT")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}

	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIES: %w", err)
		}
		c.SecureCookies = b
	}

	if err := setFloat(&c.Form.MinBillLKR, "MIN_BILL_LKR"); err != nil {
		return err
	}
	if err := setInt(&c.Form.LoanTermYears, "LOAN_TERM_YEARS"); err != nil {
		return err
	}
	if err := setFloat(&c.Form.LoanRatePct, "LOAN_RATE_PCT"); err != nil {
		return err
	}
	if err := setInt(&c.Analysis.TimeoutSeconds, "ANALYSIS_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	if err := setInt(&c.Chat.TimeoutSeconds, "CHAT_TIMEOUT_SECONDS"); err != nil {
		return err
	}

	lat, lon := os.Getenv("DEVICE_LAT"), os.Getenv("DEVICE_LON")
	if lat != "" || lon != "" {
		p, err := geo.ParsePoint(lat, lon)
		if err != nil {
			return fmt.Errorf("DEVICE_LAT/DEVICE_LON: %w", err)
		}
		c.Location.DeviceFix = &p
	}
	return nil
}

func (c Config) Validate() error {
	for name, raw := range map[string]string{"analysis.url": c.Analysis.URL, "chat.url": c.Chat.URL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s=%q", ErrInvalidURL, name, raw)
		}
	}
	if c.Port == "" {
		return fmt.Errorf("%w: port is empty", ErrInvalidRange)
	}
	if c.Form.MinBillLKR < 0 {
		return fmt.Errorf("%w: form.min_bill_lkr=%v", ErrInvalidRange, c.Form.MinBillLKR)
	}
	if c.Form.LoanTermYears <= 0 {
		return fmt.Errorf("%w: form.loan_term_years=%d", ErrInvalidRange, c.Form.LoanTermYears)
	}
	if c.Form.LoanRatePct < 0 || c.Form.LoanRatePct > 100 {
		return fmt.Errorf("%w: form.loan_rate_pct=%v", ErrInvalidRange, c.Form.LoanRatePct)
	}
	if c.Analysis.TimeoutSeconds < 0 || c.Chat.TimeoutSeconds < 0 || c.Location.ClassifyTimeoutSeconds < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidRange)
	}
	if _, err := district.Parse(c.Form.DefaultDistrict); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDistrict, c.Form.DefaultDistrict)
	}
	if err := c.DefaultPoint().Validate(); err != nil {
		return fmt.Errorf("location default point: %w", err)
	}
	if c.Location.DeviceFix != nil {
		if err := c.Location.DeviceFix.Validate(); err != nil {
			return fmt.Errorf("location device fix: %w", err)
		}
	}
	return nil
}

// FormRules converts the form section. Call after Validate.
func (c Config) FormRules() form.Rules {
	d, _ := district.Parse(c.Form.DefaultDistrict)
	return form.Rules{
		MinBillLKR:      c.Form.MinBillLKR,
		LoanTermYears:   c.Form.LoanTermYears,
		LoanRatePct:     c.Form.LoanRatePct,
		DefaultDistrict: d,
	}
}

func (c Config) DefaultPoint() geo.Point {
	return geo.Point{Lat: c.Location.DefaultLat, Lon: c.Location.DefaultLon}
}

func (c Config) ClassifyTimeout() time.Duration {
	return time.Duration(c.Location.ClassifyTimeoutSeconds) * time.Second
}

// Locator returns the device locator for this host.
func (c Config) Locator() location.DeviceLocator {
	if c.Location.DeviceFix == nil {
		return location.UnavailableLocator{}
	}
	return location.StaticLocator{Point: *c.Location.DeviceFix}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
