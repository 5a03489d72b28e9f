package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"netpong/internal/api"
	"netpong/internal/config"
	"netpong/internal/logging"
	"netpong/internal/match"
	"netpong/internal/network"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		addr       = flag.String("addr", "", "UDP listen address, overrides server.addr")
		apiAddr    = flag.String("api", "", "HTTP API listen address, overrides api.addr")
		logLevel   = flag.String("log-level", "", "log level, overrides log.level")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *apiAddr != "" {
		cfg.API.Addr = *apiAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	conn, err := network.Listen(cfg.Server.Addr, cfg.Server.PollInterval, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	settings := match.Settings{
		TickRate:       cfg.Match.TickRate,
		RedundantSends: cfg.Match.RedundantSends,
		Game:           cfg.Game,
	}
	registry := match.NewRegistry(match.NewWorkerFunc(conn, settings, log), log)
	server := network.NewServer(conn, registry, cfg.Server.InboxSize, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return registry.Run(ctx) })
	g.Go(func() error { return server.Serve(ctx) })
	if cfg.API.Enabled {
		g.Go(func() error {
			return api.NewServer(registry, log).ListenAndServe(ctx, cfg.API.Addr)
		})
	}

	err = g.Wait()
	log.Info().Msg("server stopped")
	return err
}
