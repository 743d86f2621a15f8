package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/mrverrall/philips-heater-coap/internal/app"
	"github.com/mrverrall/philips-heater-coap/internal/config"
	"github.com/mrverrall/philips-heater-coap/internal/logging"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "heater-bridge",
		Usage:   "Philips CoAP heater bridge",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(cmd)
			log := logging.New(cfg.LogLevel)

			return app.New(log, cfg).Run(ctx)
		},
	}
}

func flags() []cli.Flag {
	var configFile string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:     "host",
			Aliases:  []string{"H"},
			Usage:    "Heater IP address or hostname",
			Sources:  cli.NewValueSourceChain(yaml.YAML("device.host", altsrc.NewStringPtrSourcer(&configFile))),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "airctrl-bin",
			Usage:   "Path to the aioairctrl binary",
			Value:   "aioairctrl",
			Sources: cli.NewValueSourceChain(yaml.YAML("device.airctrl_bin", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:      "update-method",
			Usage:     "Snapshot update method: observe or polling",
			Value:     "observe",
			Sources:   cli.NewValueSourceChain(yaml.YAML("device.update_method", altsrc.NewStringPtrSourcer(&configFile))),
			Validator: validateUpdateMethod,
		},
		&cli.DurationFlag{
			Name:    "scan-interval",
			Aliases: []string{"s"},
			Usage:   "Polling interval (polling method only)",
			Value:   10 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("device.scan_interval", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "op-timeout",
			Usage:   "Timeout for a single device operation",
			Value:   30 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("device.op_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "temperature-formula",
			Usage:   "Calibration expression over x applied to temperature readings, e.g. \"x + 0.3\"",
			Sources: cli.NewValueSourceChain(yaml.YAML("device.temperature_formula", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "hass-url",
			Usage:   "Home Assistant base URL (state publishing disabled when empty)",
			Sources: cli.NewValueSourceChain(yaml.YAML("homeassistant.url", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "hass-token",
			Usage:   "Home Assistant long-lived access token",
			Sources: cli.NewValueSourceChain(yaml.YAML("homeassistant.token", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "entity-id",
			Usage:   "Entity id to publish state under",
			Value:   "climate.philips_heater",
			Sources: cli.NewValueSourceChain(yaml.YAML("homeassistant.entity_id", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "friendly-name",
			Usage:   "Friendly name attribute for the published entity",
			Value:   "Philips Heater",
			Sources: cli.NewValueSourceChain(yaml.YAML("homeassistant.friendly_name", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "0.0.0.0",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8090",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   15 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout",
			Value:   15 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "db-path",
			Usage:   "SQLite file for temperature history (disabled when empty)",
			Sources: cli.NewValueSourceChain(yaml.YAML("storage.db_path", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "cache-path",
			Usage:   "JSON file caching the last snapshot across restarts (disabled when empty)",
			Sources: cli.NewValueSourceChain(yaml.YAML("storage.cache_path", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "history-retention",
			Usage:   "Drop history samples older than this",
			Value:   30 * 24 * time.Hour,
			Sources: cli.NewValueSourceChain(yaml.YAML("storage.history_retention", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn or error",
			Value:   "info",
			Sources: cli.NewValueSourceChain(yaml.YAML("log.level", altsrc.NewStringPtrSourcer(&configFile))),
		},
	}
}

func validateUpdateMethod(method string) error {
	if method != "observe" && method != "polling" {
		return fmt.Errorf("invalid update method %q, want observe or polling", method)
	}
	return nil
}

func validateConfig(configFile string) error {
	info, err := os.Stat(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", configFile)
		}
		return fmt.Errorf("failed to stat %q: %w", configFile, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", configFile)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", configFile)
	}

	return nil
}
