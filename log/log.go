package log

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/connectoragent/errors"
)

// Config contains the configuration for the global logger.
type Config struct {
	Format string `help:"Format to write log lines in" enum:"text,json" default:"text"`
	Level  string `help:"Lowest log level that will be emitted" enum:"trace,debug,info,warn,error" default:"info"`
	File   string `help:"File to direct logs to. If left blank or '-' logs go to stderr" default:"-"`
}

// Configure the global logger.
func (cfg *Config) Configure() error {
	out, err := cfg.output()
	if err != nil {
		return err
	}
	log.SetOutput(out)
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return errors.NewInvalidConfigurationError(err.Error())
		}
		log.SetLevel(level)
	}
	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.NewInvalidConfigurationError("log format must be either text or json")
	}
	return nil
}

// stdout carries the query results, so logs default to stderr.
func (cfg *Config) output() (io.Writer, error) {
	if cfg.File == "" || cfg.File == "-" {
		return os.Stderr, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}
