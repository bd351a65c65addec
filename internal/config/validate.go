package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL)
	}
	if c.Cache.StatsKeyLimit < 0 {
		return fmt.Errorf("cache.stats_key_limit must be >= 0 (got %d)", c.Cache.StatsKeyLimit)
	}

	if err := c.Dropdowns.validate(); err != nil {
		return fmt.Errorf("dropdowns: %w", err)
	}

	if err := c.RateLimit.validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}

	return nil
}

func (d *DropdownsConfig) validate() error {
	if strings.TrimSpace(d.FallbackLanguage) == "" {
		return fmt.Errorf("fallback_language is required")
	}

	types, err := ParseComponentTypes(d.AllowedTypesRaw)
	if err != nil {
		return fmt.Errorf("allowed_types: %w", err)
	}
	if len(types) == 0 {
		return fmt.Errorf("allowed_types must list at least one component type")
	}
	d.AllowedTypes = types

	return nil
}

func (r *RateLimitConfig) validate() error {
	if !r.Enabled {
		return nil
	}
	if r.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be > 0 (got %d)", r.RequestsPerMinute)
	}
	if r.Burst <= 0 {
		return fmt.Errorf("burst must be > 0 (got %d)", r.Burst)
	}
	if r.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be > 0 (got %v)", r.CleanupInterval)
	}
	return nil
}

// ParseComponentTypes parses a comma-separated list of component types
// (e.g. "dropdown_container,option") and rejects types the dropdown engine
// cannot place. An empty string returns a nil slice.
func ParseComponentTypes(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	types := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if domain.ComponentType(p).Role() == domain.RoleUnknown {
			return nil, fmt.Errorf("unsupported component type %q", p)
		}
		types = append(types, p)
	}

	return types, nil
}
