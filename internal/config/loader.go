package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load builds a Config from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := loadStruct(reflect.ValueOf(&cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// envTag is the parsed form of a field's env, envAlt, default and
// required tags.
type envTag struct {
	name     string
	alt      string
	fallback string
	required bool
}

func parseTag(tag reflect.StructTag) (envTag, bool) {
	name := tag.Get("env")
	if name == "" {
		return envTag{}, false
	}
	return envTag{
		name:     name,
		alt:      tag.Get("envAlt"),
		fallback: tag.Get("default"),
		required: tag.Get("required") == "true",
	}, true
}

// resolve returns the raw value for the tag. An empty variable counts as unset.
func (e envTag) resolve() (string, error) {
	for _, key := range []string{e.name, e.alt} {
		if key == "" {
			continue
		}
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}
	if e.required {
		return "", fmt.Errorf("required environment variable %s is not set", e.name)
	}
	return e.fallback, nil
}

// loadStruct fills the tagged fields of v, descending into nested
// structs. Every bad variable is reported, not just the first.
func loadStruct(v reflect.Value) error {
	var errs []error
	for i := 0; i < v.NumField(); i++ {
		sf, fv := v.Type().Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if fv.Kind() == reflect.Struct {
			errs = append(errs, loadStruct(fv))
			continue
		}
		tag, ok := parseTag(sf.Tag)
		if !ok {
			continue
		}
		raw, err := tag.resolve()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", tag.name, raw, err))
		}
	}
	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", fv.Type().Elem())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	rules := []struct {
		broken bool
		msg    string
	}{
		{c.Server.Port <= 0 || c.Server.Port > 65535, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port)},
		{c.Server.ReadTimeout < 0, "SERVER_READ_TIMEOUT must be non-negative"},
		{c.Server.ShutdownTimeout <= 0, "SERVER_SHUTDOWN_TIMEOUT must be positive"},

		{c.Upload.MaxFileSize <= 0, "UPLOAD_MAX_FILE_SIZE must be positive"},
		{c.Upload.MaxConcurrent <= 0, "UPLOAD_MAX_CONCURRENT must be positive"},
		{c.Upload.MaxWaitTime <= 0, "UPLOAD_MAX_WAIT_TIME must be positive"},
		{c.Upload.Timeout <= 0, "UPLOAD_TIMEOUT must be positive"},

		{c.Session.TTL <= 0, "SESSION_TTL must be positive"},
		{c.Session.MaxDatasets <= 0, "SESSION_MAX_DATASETS must be positive"},
		{c.Session.SweepInterval <= 0, "SESSION_SWEEP_INTERVAL must be positive"},
		{c.Session.TTL > 0 && c.Session.SweepInterval > c.Session.TTL,
			fmt.Sprintf("SESSION_SWEEP_INTERVAL (%s) must not exceed SESSION_TTL (%s)", c.Session.SweepInterval, c.Session.TTL)},

		{c.Display.MaxRows <= 0, "DISPLAY_MAX_ROWS must be positive"},

		{c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled"},
		{c.Rate.Enabled && c.Rate.UploadLimit <= 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled"},

		{c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0, "REQUIRE_API_KEY needs at least one key in API_KEYS"},

		{!oneOf(c.Logging.Level, "debug", "info", "warn", "error"), fmt.Sprintf("LOG_LEVEL %q must be debug, info, warn or error", c.Logging.Level)},
		{!oneOf(c.Logging.Format, "text", "json"), fmt.Sprintf("LOG_FORMAT %q must be text or json", c.Logging.Format)},
	}

	var errs []error
	for _, r := range rules {
		if r.broken {
			errs = append(errs, errors.New(r.msg))
		}
	}
	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// String summarises the config for logging. API keys appear only as a count.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Host: %q, Port: %d}, Upload: {MaxFileSize: %d, MaxConcurrent: %d}, "+
		"Session: {TTL: %s, MaxDatasets: %d}, Rate: {Enabled: %t, RequestsPerMinute: %d}, "+
		"Security: {RequireAPIKey: %t, APIKeys: [%d MASKED]}, Logging: {Level: %q, Format: %q}}",
		c.Server.Host, c.Server.Port,
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent,
		c.Session.TTL, c.Session.MaxDatasets,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Security.RequireAPIKey, len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format)
}
