package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/adbtrace/internal/config"
	"github.com/danmuck/adbtrace/internal/observability"
	"github.com/danmuck/adbtrace/internal/server"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "TOML config path")
	addr := flag.String("addr", "", "listen address (overrides [server] addr)")
	flag.Parse()

	logger := observability.InitLogger("adbserve")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adbserve: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg).Serve(ctx); err != nil {
		logger.Error().Err(err).Msg("decode server failed")
		os.Exit(1)
	}
}
