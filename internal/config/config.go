package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/netssd/netssd/internal/engine"
)

// NodeConfig is the resolved daemon configuration.
type NodeConfig struct {
	Name        string
	ListenAddr  string
	AdminAddr   string
	CorsOrigins []string
	LogLevel    string
	Engine      engine.Config
}

// fileConfig mirrors the on-disk TOML shape; durations travel as strings.
type fileConfig struct {
	Name        string           `toml:"name"`
	ListenAddr  string           `toml:"listen_addr"`
	AdminAddr   string           `toml:"admin_addr"`
	CorsOrigins []string         `toml:"cors_origins"`
	LogLevel    string           `toml:"log_level"`
	Engine      fileEngineConfig `toml:"engine"`
}

type fileEngineConfig struct {
	ProtocolNumber       int    `toml:"protocol_number"`
	AcceptUnsolicited    bool   `toml:"accept_unsolicited"`
	InboundQueueCapacity int    `toml:"inbound_queue_capacity"`
	IdleTimeout          string `toml:"idle_timeout"`
	SweepInterval        string `toml:"sweep_interval"`
}

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Name:        "netssd",
		ListenAddr:  ":9014",
		AdminAddr:   ":9015",
		CorsOrigins: []string{"http://localhost:3000"},
		LogLevel:    "info",
		Engine:      engine.DefaultConfig(),
	}
}

// LoadNodeConfig reads path over the defaults: only keys present in the file
// override, so a partial config stays valid.
func LoadNodeConfig(path string) (NodeConfig, error) {
	cfg := DefaultNodeConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return NodeConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("engine", "protocol_number") {
		cfg.Engine.ProtocolNumber = raw.Engine.ProtocolNumber
	}
	if meta.IsDefined("engine", "accept_unsolicited") {
		cfg.Engine.AcceptUnsolicited = raw.Engine.AcceptUnsolicited
	}
	if meta.IsDefined("engine", "inbound_queue_capacity") {
		cfg.Engine.InboundQueueCapacity = raw.Engine.InboundQueueCapacity
	}
	if meta.IsDefined("engine", "idle_timeout") {
		d, err := parseDuration(raw.Engine.IdleTimeout)
		if err != nil {
			return NodeConfig{}, fmt.Errorf("parse engine.idle_timeout: %w", err)
		}
		cfg.Engine.IdleTimeout = d
	}
	if meta.IsDefined("engine", "sweep_interval") {
		d, err := parseDuration(raw.Engine.SweepInterval)
		if err != nil {
			return NodeConfig{}, fmt.Errorf("parse engine.sweep_interval: %w", err)
		}
		cfg.Engine.SweepInterval = d
	}

	if err := ValidateNodeConfig(cfg); err != nil {
		return NodeConfig{}, err
	}
	return cfg, nil
}

func ValidateNodeConfig(cfg NodeConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("node config missing name")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("node config missing listen_addr")
	}
	if strings.TrimSpace(cfg.AdminAddr) == "" {
		return fmt.Errorf("node config missing admin_addr")
	}
	if cfg.Engine.ProtocolNumber <= 0 || cfg.Engine.ProtocolNumber > 255 {
		return fmt.Errorf("engine.protocol_number out of range: %d", cfg.Engine.ProtocolNumber)
	}
	if cfg.Engine.InboundQueueCapacity <= 0 {
		return fmt.Errorf("engine.inbound_queue_capacity must be positive")
	}
	if cfg.Engine.IdleTimeout <= 0 {
		return fmt.Errorf("engine.idle_timeout must be positive")
	}
	if cfg.Engine.SweepInterval <= 0 {
		return fmt.Errorf("engine.sweep_interval must be positive")
	}
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return d, nil
}
