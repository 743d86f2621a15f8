package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	Device
	HomeAssistant
	HTTP
	Storage
	LogLevel slog.Level
}

type Device struct {
	Host               string
	AirctrlBinary      string
	UpdateMethod       string
	ScanInterval       time.Duration
	OperationTimeout   time.Duration
	TemperatureFormula string
}

type HomeAssistant struct {
	URL          string
	Token        string
	EntityID     string
	FriendlyName string
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Storage struct {
	DBPath           string
	CachePath        string
	HistoryRetention time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		Device: Device{
			Host:               cmd.String("host"),
			AirctrlBinary:      cmd.String("airctrl-bin"),
			UpdateMethod:       cmd.String("update-method"),
			ScanInterval:       cmd.Duration("scan-interval"),
			OperationTimeout:   cmd.Duration("op-timeout"),
			TemperatureFormula: cmd.String("temperature-formula"),
		},
		HomeAssistant: HomeAssistant{
			URL:          cmd.String("hass-url"),
			Token:        cmd.String("hass-token"),
			EntityID:     cmd.String("entity-id"),
			FriendlyName: cmd.String("friendly-name"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
		Storage: Storage{
			DBPath:           cmd.String("db-path"),
			CachePath:        cmd.String("cache-path"),
			HistoryRetention: cmd.Duration("history-retention"),
		},
		LogLevel: ParseLogLevel(cmd.String("log-level")),
	}
}

func ParseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
