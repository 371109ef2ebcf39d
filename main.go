package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/probedoc-go/app"
	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/debug"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to the JSON config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging and memory instrumentation")
	writeCfg := flag.Bool("write-config", false, "write the effective config to -config and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, cfgErr := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if cfgErr != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", cfgErr)
	}

	if *writeCfg {
		if err := cfg.Save(*cfgPath); err != nil {
			logger.Error("config save failed", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		logger.Info("config written", "path", *cfgPath)
		return
	}

	application := app.NewApp("probedoc", cfg, *cfgPath, flag.Args(), logger)
	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger, application.MemoryAttrs)
	}
	application.Start()
}
