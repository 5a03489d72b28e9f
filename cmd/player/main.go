package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"netpong/internal/client"
	"netpong/internal/config"
	"netpong/internal/logging"
	"netpong/internal/network"
)

func main() {
	err := run()
	switch {
	case err == nil, errors.Is(err, client.ErrSessionEnded), errors.Is(err, context.Canceled):
		os.Exit(0)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		serverAddr = flag.String("server", "127.0.0.1:9999", "UDP address of the game server")
		bind       = flag.String("bind", "127.0.0.1:0", "local UDP address")
		fps        = flag.Int("fps", 0, "frames per second, overrides client.fps")
		logLevel   = flag.String("log-level", "", "log level, overrides log.level")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *fps > 0 {
		cfg.Client.FPS = *fps
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	server, err := net.ResolveUDPAddr("udp", *serverAddr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", *serverAddr, err)
	}
	conn, err := network.Listen(*bind, cfg.Server.PollInterval, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(conn, server, cfg.Game, client.Options{
		RetryInterval:  cfg.Client.JoinRetry,
		RedundantSends: cfg.Match.RedundantSends,
	}, log)

	if _, err := c.Join(ctx); err != nil {
		return err
	}
	if err := c.WaitReady(ctx); err != nil {
		return err
	}

	return c.Run(ctx, cfg.Client.FPS, client.NewAutopilot(cfg.Game), &client.LogRenderer{Log: log})
}
