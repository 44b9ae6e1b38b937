package config

import (
	"fmt"
	"os"

	tomlenc "github.com/pelletier/go-toml/v2"
)

// Template renders the default node config as TOML.
func Template() (string, error) {
	def := DefaultNodeConfig()
	raw := fileConfig{
		Name:        def.Name,
		ListenAddr:  def.ListenAddr,
		AdminAddr:   def.AdminAddr,
		CorsOrigins: def.CorsOrigins,
		LogLevel:    def.LogLevel,
		Engine: fileEngineConfig{
			ProtocolNumber:       def.Engine.ProtocolNumber,
			AcceptUnsolicited:    def.Engine.AcceptUnsolicited,
			InboundQueueCapacity: def.Engine.InboundQueueCapacity,
			IdleTimeout:          def.Engine.IdleTimeout.String(),
			SweepInterval:        def.Engine.SweepInterval.String(),
		},
	}
	out, err := tomlenc.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return string(out), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
