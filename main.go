package main

import (
	"context"
	"flag"
	"os"

	"github.com/docrelay/docrelay/config"
	"github.com/docrelay/docrelay/server"
)

func main() {
	var configPath string

	flag.StringVar(&configPath, "config", "config.yaml", "configuration file")
	flag.Parse()

	if val := os.Getenv("CONFIG_PATH"); val != "" {
		configPath = val
	}

	ctx := context.Background()

	cfg, err := config.New(ctx, configPath)

	if err != nil {
		panic(err)
	}

	s := server.New(cfg)

	if err := s.ListenAndServe(); err != nil {
		cfg.Logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
