package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/netssd/netssd/internal/admin"
	"github.com/netssd/netssd/internal/config"
	"github.com/netssd/netssd/internal/engine"
	"github.com/netssd/netssd/internal/observability"
	"github.com/netssd/netssd/internal/transport/udp"
)

func main() {
	configPath := flag.String("config", "cmd/netssd/config.toml", "node config path")
	flag.Parse()

	observability.InitLogger("netssd")
	cfg, err := config.LoadNodeConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load node config")
	}
	observability.SetLevel(cfg.LogLevel)
	log.Info().Str("path", *configPath).Str("node", cfg.Name).Msg("loaded node config")

	transport, err := udp.Listen(cfg.ListenAddr, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.ListenAddr).Msg("failed to bind udp transport")
	}

	eng := engine.New(cfg.Engine, transport.LocalEndpoint(), transport, log.Logger)
	transport.Bind(eng.HandleDatagram)
	eng.Start()
	transport.Start()

	server := admin.New(cfg.Name, cfg.AdminAddr, eng, cfg.CorsOrigins)
	go func() {
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin surface started")
		if err := server.Serve(); err != nil {
			log.Error().Err(err).Msg("admin surface stopped")
		}
	}()

	log.Info().
		Str("listen", transport.LocalEndpoint().String()).
		Int("protocol", eng.ProtocolNumber()).
		Msg("netssd node started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	transport.Stop()
	eng.Stop()
}
