package producer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Clients         []string
	KeywordsPerFile int
	Year            int
	Months          int
	Seed            int64
}

func DefaultConfig() Config {
	now := time.Now().UTC()
	return Config{
		Bucket:          "rankchat",
		Prefix:          "reports",
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
		Clients:         []string{"abc", "efg", "northstar"},
		KeywordsPerFile: 50,
		Year:            now.Year(),
		Months:          3,
		Seed:            now.UnixNano(),
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	applyString(lookup, "RANKCHAT_DEMO_BUCKET", &cfg.Bucket)
	applyString(lookup, "RANKCHAT_DEMO_PREFIX", &cfg.Prefix)
	applyString(lookup, "RANKCHAT_DEMO_S3_ENDPOINT", &cfg.Endpoint)
	applyString(lookup, "RANKCHAT_DEMO_S3_REGION", &cfg.Region)
	applyString(lookup, "RANKCHAT_DEMO_S3_ACCESS_KEY_ID", &cfg.AccessKeyID)
	applyString(lookup, "RANKCHAT_DEMO_S3_SECRET_ACCESS_KEY", &cfg.SecretAccessKey)
	if err := applyBool(lookup, "RANKCHAT_DEMO_S3_USE_SSL", &cfg.UseSSL); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("RANKCHAT_DEMO_CLIENTS"); ok {
		cfg.Clients = splitClients(raw)
	}
	if err := applyInt(lookup, "RANKCHAT_DEMO_KEYWORDS_PER_FILE", &cfg.KeywordsPerFile); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "RANKCHAT_DEMO_YEAR", &cfg.Year); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "RANKCHAT_DEMO_MONTHS", &cfg.Months); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "RANKCHAT_DEMO_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Bucket) == "" {
		return Config{}, fmt.Errorf("RANKCHAT_DEMO_BUCKET is required")
	}
	if len(cfg.Clients) == 0 {
		return Config{}, fmt.Errorf("RANKCHAT_DEMO_CLIENTS must name at least one client")
	}
	if cfg.KeywordsPerFile <= 0 {
		return Config{}, fmt.Errorf("RANKCHAT_DEMO_KEYWORDS_PER_FILE must be > 0")
	}
	if cfg.Months <= 0 || cfg.Months > 12 {
		return Config{}, fmt.Errorf("RANKCHAT_DEMO_MONTHS must be in 1..12")
	}
	return cfg, nil
}

func splitClients(raw string) []string {
	parts := strings.Split(raw, ",")
	clients := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			clients = append(clients, part)
		}
	}
	return clients
}

func applyString(lookup LookupFunc, key string, dst *string) {
	if raw, ok := lookup(key); ok {
		*dst = strings.TrimSpace(raw)
	}
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
