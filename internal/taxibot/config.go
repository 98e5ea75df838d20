package taxibot

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/orderbot/core/config"
	coredatabase "github.com/m3rciful/orderbot/core/database"
	"github.com/m3rciful/orderbot/core/order"
)

const defaultSweepInterval = time.Minute

// Config is the full bot configuration: the shared core settings plus the
// order-intake specifics.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Dispatch DispatchConfig      `yaml:"dispatch"`
	// Services overrides menu labels by service key (taxi, delivery, sober_driver, car_relocation).
	Services map[string]string `yaml:"services"`
	Session  SessionConfig     `yaml:"session"`
	Texts    Texts             `yaml:"texts"`
}

// DispatchConfig describes where completed orders go.
type DispatchConfig struct {
	ChatID      int64  `yaml:"chat_id" envconfig:"GROUP_ID"`
	MapLinkBase string `yaml:"map_link_base" envconfig:"MAP_LINK_BASE"`
}

// SessionConfig controls expiry of abandoned orders.
type SessionConfig struct {
	// TTL drops sessions idle for longer; 0 keeps them until completion or cancel.
	TTL           time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL"`
}

// CoreConfig satisfies cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the YAML file at path, applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if c.Dispatch.ChatID == 0 {
		return fmt.Errorf("dispatch.chat_id is required")
	}
	c.Dispatch.MapLinkBase = strings.TrimSpace(c.Dispatch.MapLinkBase)
	if c.Dispatch.MapLinkBase == "" {
		c.Dispatch.MapLinkBase = order.DefaultMapLinkBase
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must be >= 0")
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = defaultSweepInterval
	}
	cat, err := c.Catalog()
	if err != nil {
		return err
	}
	c.Texts = c.Texts.withDefaults()
	if _, clash := cat.Lookup(c.Texts.BackButton); clash {
		return fmt.Errorf("texts.back_button %q collides with a service label", c.Texts.BackButton)
	}
	return nil
}

// Catalog builds the service catalog from defaults and configured overrides.
func (c *Config) Catalog() (order.Catalog, error) {
	if len(c.Services) == 0 {
		return order.DefaultCatalog(), nil
	}
	labels := make(map[order.ServiceKind]string, len(order.DefaultLabels))
	for k, v := range order.DefaultLabels {
		labels[k] = v
	}
	for key, label := range c.Services {
		kind, ok := order.ParseServiceKind(key)
		if !ok {
			return order.Catalog{}, fmt.Errorf("services: unknown service %q", key)
		}
		labels[kind] = strings.TrimSpace(label)
	}
	cat, err := order.NewCatalog(labels)
	if err != nil {
		return order.Catalog{}, fmt.Errorf("services: %w", err)
	}
	return cat, nil
}
