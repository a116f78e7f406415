// Package config loads the bot's YAML configuration: the Discord guild,
// admin role names, the team directory, and the named map pools.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mapveto/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	// GuildID is the Discord server the slash commands are synced to.
	GuildID string `yaml:"guild_id"`

	// AdminRoles are role names whose holders bypass team checks.
	AdminRoles []string `yaml:"admin_roles"`

	// DefaultPool is used when /match omits the pool argument.
	DefaultPool string `yaml:"default_pool"`

	// IdleTimeoutMinutes discards a veto session with no activity
	// for this long. Defaults to 72 hours.
	IdleTimeoutMinutes int `yaml:"idle_timeout_minutes"`

	Teams []TeamConfig `yaml:"teams"`
	Pools []PoolConfig `yaml:"pools"`
}

// TeamConfig is one tournament team: the Discord role name and the
// aliases accepted when starting a match.
type TeamConfig struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// PoolConfig is one named map pool, in listing order.
type PoolConfig struct {
	Name string      `yaml:"name"`
	Maps []MapConfig `yaml:"maps"`
}

// MapConfig is one map of a pool.
type MapConfig struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Category string   `yaml:"category"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Defaults
	if len(cfg.AdminRoles) == 0 {
		cfg.AdminRoles = []string{"Discord Admin", "Organizer"}
	}
	if cfg.DefaultPool == "" {
		cfg.DefaultPool = "SS25"
	}
	if cfg.IdleTimeoutMinutes == 0 {
		cfg.IdleTimeoutMinutes = 72 * 60
	}

	if len(cfg.Teams) == 0 {
		return nil, fmt.Errorf("no teams configured")
	}
	if len(cfg.Pools) == 0 {
		return nil, fmt.Errorf("no map pools configured")
	}
	return &cfg, nil
}

// IdleTimeout returns the configured inactivity window.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

// Directory builds the team directory from the configured teams.
func (c *Config) Directory() *domain.Directory {
	teams := make([]domain.TeamIdentity, len(c.Teams))
	for i, t := range c.Teams {
		teams[i] = domain.TeamIdentity{Name: t.Name, Aliases: t.Aliases}
	}
	return domain.NewDirectory(teams)
}

// Pool builds the registry for a named pool. The name is matched
// case-sensitively; spec'd pool names are uppercase tags like "SS25".
// Malformed pool definitions surface per request rather than at boot so
// one broken pool does not take the other tournaments down.
func (c *Config) Pool(name string) (*domain.Registry, error) {
	for _, p := range c.Pools {
		if p.Name != name {
			continue
		}
		entries := make([]domain.MapEntry, len(p.Maps))
		for i, m := range p.Maps {
			entries[i] = domain.MapEntry{
				Name:     m.Name,
				Aliases:  m.Aliases,
				Category: domain.PoolCategory(m.Category),
			}
		}
		reg, err := domain.NewRegistry(entries)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", name, err)
		}
		return reg, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrPoolNotFound, name)
}

// PoolNames returns the configured pool names in definition order.
func (c *Config) PoolNames() []string {
	names := make([]string, len(c.Pools))
	for i, p := range c.Pools {
		names[i] = p.Name
	}
	return names
}
